package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sujangowda077/sidequest-main/internal/models"
	"github.com/sujangowda077/sidequest-main/internal/services"
)

func QuotePrint(ps *services.PrintService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, _, ok := currentUser(c)
		if !ok {
			return
		}

		var body struct {
			Files []models.FileSpec `json:"files" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		quote, err := ps.QuotePrint(c.Request.Context(), profile, body.Files)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(quote, ""))
	}
}

// SubmitPrint takes a multipart form: a "specs" JSON field describing each
// file, the matching "files" parts in the same order, plus utr, note and
// amount fields.
func SubmitPrint(ps *services.PrintService) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, profile, token, ok := currentUser(c)
		if !ok {
			return
		}

		var specs []models.FileSpec
		if err := json.Unmarshal([]byte(c.PostForm("specs")), &specs); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("specs must be a JSON array of file settings"))
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("multipart form required"))
			return
		}
		fileHeaders := form.File["files"]
		if len(fileHeaders) != len(specs) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("each spec needs a matching file"))
			return
		}

		uploads := make([]services.FileUpload, 0, len(fileHeaders))
		for _, fh := range fileHeaders {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read "+fh.Filename))
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("failed to read "+fh.Filename))
				return
			}
			uploads = append(uploads, services.FileUpload{FileName: fh.Filename, Data: data})
		}

		amount, _ := strconv.ParseFloat(c.PostForm("amount"), 64)
		input := services.SubmitPrintInput{
			Files:    specs,
			Uploads:  uploads,
			UTR:      c.PostForm("utr"),
			FreeText: c.PostForm("note"),
			Amount:   amount,
		}

		created, err := ps.SubmitPrint(c.Request.Context(), profile, input, token)
		if err != nil {
			c.JSON(gateStatus(err), models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Print job submitted"))
	}
}

func PrintHistory(ps *services.PrintService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, _, _, ok := currentUser(c)
		if !ok {
			return
		}
		rows, err := ps.History(c.Request.Context(), userID(claims))
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func PrintQueue(ps *services.PrintService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := ps.Queue(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(rows, ""))
	}
}

func MarkPrintDone(ps *services.PrintService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := ps.MarkDone(c.Request.Context(), id); err != nil {
			c.JSON(http.StatusConflict, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Print job completed"))
	}
}
