package report

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"civicpulse/middleware"
	"civicpulse/model"
	"civicpulse/services"
)

// GetReports lists reports with declarative filters, sorting, field
// selection and pagination, or a geo-radius lookup when latitude,
// longitude and radius are all given.
func GetReports(c *gin.Context, db *mongo.Database) {
	listReports(c, db, nil)
}

// GetMyReports lists the authenticated citizen's own reports.
func GetMyReports(c *gin.Context, db *mongo.Database) {
	listReports(c, db, bson.M{"citizen": middleware.UserID(c)})
}

// GetAssignedReports lists reports assigned to the authenticated officer.
func GetAssignedReports(c *gin.Context, db *mongo.Database) {
	listReports(c, db, bson.M{"assignedOfficer": middleware.UserID(c)})
}

// listReports runs the shared query pipeline. scope entries override any
// client-supplied filter on the same fields.
func listReports(c *gin.Context, db *mongo.Database, scope bson.M) {
	q := services.ParseQuery(c.Request.URL.Query(), services.ReportDefaults)
	for k, v := range scope {
		q.Filter[k] = v
	}

	ctx := c.Request.Context()
	col := db.Collection("reports")

	total, err := col.CountDocuments(ctx, q.Filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	cursor, err := col.Find(ctx, q.Filter, q.FindOptions())
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}
	reports := []model.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		c.JSON(http.StatusInternalServerError, model.Fail("Database error"))
		return
	}

	c.JSON(http.StatusOK, model.OKList(reports, total, q.Pagination(total)))
}

func GetReport(c *gin.Context, db *mongo.Database) {
	r, err := fetchReport(c.Request.Context(), db, c)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, model.OK(r))
}
