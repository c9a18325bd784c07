package validator

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type examURI struct {
	ExamID      string `uri:"exam_id" binding:"required,mongodb"`
	Environment string `uri:"environment" binding:"required,oneof=Staging Production"`
}

type listQuery struct {
	Page int `form:"page" binding:"omitempty,min=1"`
}

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func bindURI(t *testing.T, path string) map[string]string {
	t.Helper()
	var fields map[string]string
	r := gin.New()
	r.GET("/exams/:exam_id/generations/:environment", func(c *gin.Context) {
		var uri examURI
		fields = BindURI(c, &uri)
		c.Status(http.StatusNoContent)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	return fields
}

func TestBindURIValid(t *testing.T) {
	assert.Nil(t, bindURI(t, "/exams/65f1a2b3c4d5e6f708192a3b/generations/Staging"))
}

func TestBindURIInvalid(t *testing.T) {
	fields := bindURI(t, "/exams/nope/generations/Preview")
	require.Len(t, fields, 2)
	assert.Contains(t, fields, "exam_id")
	assert.Equal(t, "environment must be one of [Staging Production]", fields["environment"])
}

func TestBindQueryInvalid(t *testing.T) {
	var fields map[string]string
	r := gin.New()
	r.GET("/list", func(c *gin.Context) {
		var q listQuery
		fields = BindQuery(c, &q)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/list?page=-1", nil))

	assert.Equal(t, "page must be 1 or greater", fields["page"])
}

func TestBindMalformedJSON(t *testing.T) {
	var fields map[string]string
	r := gin.New()
	r.POST("/body", func(c *gin.Context) {
		var body struct {
			Name string `json:"name" binding:"required"`
		}
		fields = Bind(c, &body)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/body", nil))

	assert.Contains(t, fields, "detail")
}
