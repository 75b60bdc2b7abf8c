package productcontroller

import (
	"context"
	"encoding/json"
	"mime/multipart"

	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/services/catalog"
	"github.com/gin-gonic/gin"
)

// layoutForm is the JSON carried in the "layout" multipart field.
// Images for a color are sent as files under "images[<color>]".
type layoutForm struct {
	Colors []struct {
		Name          string   `json:"name"`
		MainPublicID  string   `json:"main_public_id"`
		MainNewIndex  *int     `json:"main_new_index"`
		DropPublicIDs []string `json:"drop_public_ids"`
	} `json:"colors"`
	Sizes  []string `json:"sizes"`
	Stocks []struct {
		Color string `json:"color"`
		Size  string `json:"size"`
		Stock int    `json:"stock"`
	} `json:"stocks"`
}

// readLayout parses the layout field and uploads every color's new images.
// On error nothing uploaded by this call is left in the store.
func readLayout(c *gin.Context, store media.Store) (catalog.VariantLayout, error) {
	var layout catalog.VariantLayout

	raw := c.PostForm("layout")
	if raw == "" {
		return layout, apperror.Validation("layout is required")
	}
	var form layoutForm
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return layout, apperror.Validation("invalid layout: %v", err)
	}

	mf, err := c.MultipartForm()
	if err != nil {
		return layout, apperror.Validation("invalid multipart form: %v", err)
	}

	ctx := c.Request.Context()
	var uploaded []media.Asset
	fail := func(err error) (catalog.VariantLayout, error) {
		cleanup(ctx, store, uploaded)
		return catalog.VariantLayout{}, err
	}

	for _, fc := range form.Colors {
		files := mf.File["images["+fc.Name+"]"]
		assets, err := upload(ctx, store, files)
		if err != nil {
			return fail(err)
		}
		uploaded = append(uploaded, assets...)

		cl := catalog.ColorLayout{
			Name:          fc.Name,
			NewImages:     assets,
			MainPublicID:  fc.MainPublicID,
			DropPublicIDs: fc.DropPublicIDs,
		}
		if fc.MainNewIndex != nil {
			i := *fc.MainNewIndex
			if i < 0 || i >= len(assets) {
				return fail(apperror.Validation("main_new_index %d out of range for color %q", i, fc.Name))
			}
			cl.MainPublicID = assets[i].PublicID
		}
		layout.Colors = append(layout.Colors, cl)
	}

	layout.Sizes = form.Sizes
	for _, s := range form.Stocks {
		layout.Stocks = append(layout.Stocks, catalog.StockLevel{Color: s.Color, Size: s.Size, Stock: s.Stock})
	}
	return layout, nil
}

func upload(ctx context.Context, store media.Store, files []*multipart.FileHeader) ([]media.Asset, error) {
	if len(files) == 0 {
		return nil, nil
	}
	return media.UploadAll(ctx, store, files)
}

func cleanup(ctx context.Context, store media.Store, assets []media.Asset) {
	for _, a := range assets {
		_ = store.Delete(ctx, a.PublicID)
	}
}
