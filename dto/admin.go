package dto

type DepartmentRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

type RegionRequest struct {
	Name        string `json:"name" binding:"required"`
	City        string `json:"city"`
	Description string `json:"description"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Department  string `json:"department"`
}

type CreateUserRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Region     string `json:"region"`
}

type UpdateUserRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Region     string `json:"region"`
}
