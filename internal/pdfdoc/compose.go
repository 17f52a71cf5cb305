package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"
)

// Placement draws source page Page (1-based) scaled by Scale with its lower
// left corner at (TX, TY) in sheet space.
type Placement struct {
	Page   int
	Scale  float64
	TX, TY float64
}

// SheetSpec describes one output page.
type SheetSpec struct {
	Width, Height float64
	Placements    []Placement
}

// Compose renders sheets from the pages of in and writes them to out.
//
// Each placed page becomes a Form XObject. The first page of each sheet's
// group (Lead) is rewritten in place into the sheet, and all remaining pages
// are dropped afterwards, so resources shared with the source stay intact.
func Compose(in, out string, sheets []SheetSpec, leads []int) error {
	if len(sheets) != len(leads) {
		return fmt.Errorf("compose: %d sheets but %d lead pages", len(sheets), len(leads))
	}
	ctx, err := api.ReadContextFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(in), err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return fmt.Errorf("validate %s: %w", filepath.Base(in), err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return err
	}

	forms := map[int]types.IndirectRef{}
	for _, sh := range sheets {
		for _, pl := range sh.Placements {
			if _, ok := forms[pl.Page]; ok {
				continue
			}
			ref, err := formForPage(ctx, pl.Page)
			if err != nil {
				return err
			}
			forms[pl.Page] = *ref
		}
	}

	for i, sh := range sheets {
		if err := rewriteAsSheet(ctx, leads[i], sh, forms); err != nil {
			return err
		}
	}

	tmp := out + ".sheets.pdf"
	if err := api.WriteContextFile(ctx, tmp); err != nil {
		return fmt.Errorf("write sheets: %w", err)
	}

	isLead := make(map[int]bool, len(leads))
	for _, p := range leads {
		isLead[p] = true
	}
	var drop []int
	for p := 1; p <= ctx.PageCount; p++ {
		if !isLead[p] {
			drop = append(drop, p)
		}
	}
	log.Debug().Int("sheets", len(sheets)).Int("dropped_pages", len(drop)).Msg("composed sheets")
	defer os.Remove(tmp)
	return Remove(tmp, out, drop)
}

// formForPage wraps the content of page into a Form XObject whose BBox is the
// page's media box.
func formForPage(ctx *model.Context, page int) (*types.IndirectRef, error) {
	pageDict, _, inh, err := ctx.PageDict(page, false)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", page, err)
	}
	if pageDict == nil || inh == nil || inh.MediaBox == nil {
		return nil, fmt.Errorf("page %d: missing media box", page)
	}
	content, err := ctx.PageContent(pageDict)
	if errors.Is(err, model.ErrNoContent) {
		content, err = []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("page %d content: %w", page, err)
	}

	sd, err := ctx.NewStreamDictForBuf(content)
	if err != nil {
		return nil, err
	}
	sd.Insert("Type", types.Name("XObject"))
	sd.Insert("Subtype", types.Name("Form"))
	sd.Insert("BBox", inh.MediaBox.Array())
	if inh.Resources != nil {
		sd.Insert("Resources", inh.Resources)
	}
	if err := sd.Encode(); err != nil {
		return nil, err
	}
	return ctx.IndRefForNewObject(*sd)
}

func rewriteAsSheet(ctx *model.Context, lead int, sh SheetSpec, forms map[int]types.IndirectRef) error {
	pageDict, _, _, err := ctx.PageDict(lead, false)
	if err != nil {
		return fmt.Errorf("page %d: %w", lead, err)
	}
	if pageDict == nil {
		return fmt.Errorf("page %d: not found", lead)
	}

	xobjects := types.Dict{}
	var buf bytes.Buffer
	for i, pl := range sh.Placements {
		_, _, inh, err := ctx.PageDict(pl.Page, false)
		if err != nil {
			return fmt.Errorf("page %d: %w", pl.Page, err)
		}
		name := fmt.Sprintf("Fm%d", i)
		xobjects[name] = forms[pl.Page]
		// Shift the form's media box origin to 0,0 before scaling.
		llx, lly := inh.MediaBox.LL.X, inh.MediaBox.LL.Y
		fmt.Fprintf(&buf, "q %.5f 0 0 %.5f %.5f %.5f cm /%s Do Q\n",
			pl.Scale, pl.Scale, pl.TX-pl.Scale*llx, pl.TY-pl.Scale*lly, name)
	}

	sd, err := ctx.NewStreamDictForBuf(buf.Bytes())
	if err != nil {
		return err
	}
	if err := sd.Encode(); err != nil {
		return err
	}
	contentRef, err := ctx.IndRefForNewObject(*sd)
	if err != nil {
		return err
	}

	box := types.RectForWidthAndHeight(0, 0, sh.Width, sh.Height)
	pageDict["MediaBox"] = box.Array()
	pageDict["CropBox"] = box.Array()
	pageDict["Rotate"] = types.Integer(0)
	pageDict.Delete("Annots")
	pageDict["Resources"] = types.Dict{"XObject": xobjects}
	pageDict["Contents"] = *contentRef
	return nil
}
