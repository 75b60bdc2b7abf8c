package returnControllers

import (
	"net/http"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/controllers/request"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/middleware"
	"github.com/Raqibreyaz/EcommerceBackend/models"
	"github.com/Raqibreyaz/EcommerceBackend/services/returns"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ReturnForm struct {
	ProductID     uint   `form:"product_id" binding:"required"`
	Color         string `form:"color" binding:"required"`
	Size          string `form:"size" binding:"required"`
	Quantity      int    `form:"quantity" binding:"required,min=1"`
	Reason        string `form:"reason" binding:"required"`
	Replace       bool   `form:"replace"`
	PerUnitRefund string `form:"per_unit_refund"`
	models.Address
}

type UpdateReturnRequest struct {
	Status models.ReturnStatus `json:"status" binding:"required"`
}

// CreateReturnRequest files a return for one line of a delivered order.
// Photos come in as 3 to 5 files under "images".
func CreateReturnRequest(w *returns.Workflow, store media.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var form ReturnForm
		if err := c.ShouldBind(&form); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}

		var perUnit *decimal.Decimal
		if form.PerUnitRefund != "" {
			d, err := decimal.NewFromString(form.PerUnitRefund)
			if err != nil {
				_ = c.Error(apperror.Validation("invalid per_unit_refund"))
				return
			}
			perUnit = &d
		}

		mf, err := c.MultipartForm()
		if err != nil {
			_ = c.Error(apperror.Validation("invalid multipart form: %v", err))
			return
		}
		files := mf.File["images"]
		if n := len(files); n < returns.MinPhotos || n > returns.MaxPhotos {
			_ = c.Error(apperror.Validation("between %d and %d photos are required, got %d", returns.MinPhotos, returns.MaxPhotos, n))
			return
		}
		photos, err := media.UploadAll(c.Request.Context(), store, files)
		if err != nil {
			_ = c.Error(err)
			return
		}

		req, err := w.CreateReturnRequest(c.Request.Context(), middleware.UserID(c), returns.CreateInput{
			OrderID:       orderID,
			Key:           models.VariantKey{ProductID: form.ProductID, Color: form.Color, Size: form.Size},
			Quantity:      form.Quantity,
			Reason:        form.Reason,
			Photos:        photos,
			PickupAddress: form.Address,
			Replace:       form.Replace,
			PerUnitRefund: perUnit,
		})
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "return request submitted", "return_request": req})
	}
}

// UpdateReturnStatus approves or rejects a pending return
func UpdateReturnStatus(w *returns.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := request.ID(c, "id")
		if err != nil {
			_ = c.Error(err)
			return
		}
		var input UpdateReturnRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			_ = c.Error(request.Invalid(err))
			return
		}
		req, err := w.UpdateStatus(c.Request.Context(), id, input.Status)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "return request " + string(req.Status), "return_request": req})
	}
}

func GetReturnRequests(w *returns.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit := request.Page(c, 10)
		res, err := w.ListRequests(c.Request.Context(), page, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "return requests fetched successfully", "data": res})
	}
}
