package catalog

import (
	"github.com/Raqibreyaz/EcommerceBackend/apperror"
	"github.com/Raqibreyaz/EcommerceBackend/media"
	"github.com/Raqibreyaz/EcommerceBackend/models"
)

// VariantLayout is the full colors x sizes x stock structure of a product.
type VariantLayout struct {
	Colors []ColorLayout
	Sizes  []string
	Stocks []StockLevel
}

// ColorLayout describes one color and what happens to its images.
// Retained images stay unless listed in DropPublicIDs; NewImages are appended.
// MainPublicID selects the main image; when empty the previous main (or the first image) wins.
type ColorLayout struct {
	Name          string
	NewImages     []media.Asset
	MainPublicID  string
	DropPublicIDs []string
}

type StockLevel struct {
	Color string
	Size  string
	Stock int
}

func (l *VariantLayout) normalize() error {
	if len(l.Colors) == 0 {
		return apperror.Validation("at least one color is required")
	}
	if len(l.Sizes) == 0 {
		return apperror.Validation("at least one size is required")
	}

	colors := make(map[string]bool, len(l.Colors))
	for i := range l.Colors {
		name := models.NormalizeName(l.Colors[i].Name)
		if name == "" {
			return apperror.Validation("color name is required")
		}
		if colors[name] {
			return apperror.Validation("duplicate color %q", name)
		}
		colors[name] = true
		l.Colors[i].Name = name
	}

	sizes := make(map[string]bool, len(l.Sizes))
	for i := range l.Sizes {
		name := models.NormalizeName(l.Sizes[i])
		if name == "" {
			return apperror.Validation("size name is required")
		}
		if sizes[name] {
			return apperror.Validation("duplicate size %q", name)
		}
		sizes[name] = true
		l.Sizes[i] = name
	}

	pairs := make(map[[2]string]bool, len(l.Stocks))
	for i := range l.Stocks {
		st := &l.Stocks[i]
		st.Color = models.NormalizeName(st.Color)
		st.Size = models.NormalizeName(st.Size)
		if !colors[st.Color] {
			return apperror.Validation("stock entry references unknown color %q", st.Color)
		}
		if !sizes[st.Size] {
			return apperror.Validation("stock entry references unknown size %q", st.Size)
		}
		if st.Stock < 0 {
			return apperror.Validation("stock for %s / %s cannot be negative", st.Color, st.Size)
		}
		key := [2]string{st.Color, st.Size}
		if pairs[key] {
			return apperror.Validation("duplicate stock entry for %s / %s", st.Color, st.Size)
		}
		pairs[key] = true
	}
	return nil
}

func (l *VariantLayout) newAssets() []media.Asset {
	var out []media.Asset
	for _, c := range l.Colors {
		out = append(out, c.NewImages...)
	}
	return out
}

// arrangeImages merges the retained images of a color with its new uploads and puts the main image first.
// It returns the resulting image list and the public ids of images that were dropped.
func arrangeImages(current []models.ProductImage, cl ColorLayout) ([]models.ProductImage, []string, error) {
	drop := make(map[string]bool, len(cl.DropPublicIDs))
	for _, id := range cl.DropPublicIDs {
		drop[id] = true
	}

	var kept []models.ProductImage
	var dropped []string
	for _, img := range current {
		if drop[img.PublicID] {
			dropped = append(dropped, img.PublicID)
			delete(drop, img.PublicID)
			continue
		}
		kept = append(kept, img)
	}
	for id := range drop {
		return nil, nil, apperror.Validation("image %q does not belong to color %q", id, cl.Name)
	}
	for _, a := range cl.NewImages {
		kept = append(kept, models.ProductImage{URL: a.URL, PublicID: a.PublicID})
	}
	if len(kept) == 0 {
		return nil, nil, apperror.Validation("color %q needs at least one image", cl.Name)
	}

	main := -1
	if cl.MainPublicID != "" {
		for i := range kept {
			if kept[i].PublicID == cl.MainPublicID {
				main = i
				break
			}
		}
		if main < 0 {
			return nil, nil, apperror.Validation("main image %q not found for color %q", cl.MainPublicID, cl.Name)
		}
	} else {
		main = 0
		for i := range kept {
			if kept[i].ID != 0 && kept[i].IsMain {
				main = i
				break
			}
		}
	}

	ordered := make([]models.ProductImage, 0, len(kept))
	ordered = append(ordered, kept[main])
	ordered = append(ordered, kept[:main]...)
	ordered = append(ordered, kept[main+1:]...)
	for i := range ordered {
		ordered[i].Position = i
		ordered[i].IsMain = i == 0
	}
	return ordered, dropped, nil
}
