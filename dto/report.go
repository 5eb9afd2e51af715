package dto

type CreateReportRequest struct {
	Title       string  `json:"title" form:"title" binding:"required"`
	Description string  `json:"description" form:"description" binding:"required"`
	Category    string  `json:"category" form:"category" binding:"required"`
	Severity    string  `json:"severity" form:"severity" binding:"required"`
	Address     string  `json:"address" form:"address" binding:"required"`
	Lat         float64 `json:"lat" form:"lat"`
	Lng         float64 `json:"lng" form:"lng"`
}

// UpdateReportRequest covers the generic PUT. All fields optional; a status
// change appends a timeline entry.
type UpdateReportRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Severity        string `json:"severity"`
	Status          string `json:"status"`
	Message         string `json:"message"`
	AssignedOfficer string `json:"assignedOfficer"`
	Department      string `json:"department"`
	Region          string `json:"region"`
}

type AddUpdateRequest struct {
	Message string `json:"message" form:"message" binding:"required"`
	Status  string `json:"status" form:"status"`
}

type LifecycleRequest struct {
	Message string `json:"message"`
}

type FeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}
