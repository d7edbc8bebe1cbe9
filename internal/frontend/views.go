package frontend

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/jo-hoe/pixweb/internal/backend/database"
	"github.com/jo-hoe/pixweb/internal/catalog"
	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
)

//go:embed views
var templateFS embed.FS

const (
	sharedPattern = "views/*.html"
	pagesPattern  = "views/pages/*.html"
)

var viewFuncs = template.FuncMap{
	"dataURL": common.DataURL,
	"placeholder": func(name string, width int) string {
		return fmt.Sprintf("/placeholder/%s?w=%d", name, width)
	},
	"plural": pluralize,
}

func newRenderer() (*common.TemplateRenderer, error) {
	return common.NewTemplateRenderer(templateFS, sharedPattern, pagesPattern, viewFuncs)
}

// page carries what the layout needs.
type page struct {
	Title string
	Nav   string
}

type alertView struct {
	Message string
	Kind    string // error, info or success
}

type notFoundData struct {
	page
	Heading   string
	Message   string
	Back      string
	BackLabel string
}

type aboutData struct {
	page
	Body template.HTML
	Team []catalog.TeamMember
}

type contactForm struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"required,oneof=general support feedback partnership other"`
	Message string `form:"message" validate:"required,max=5000"`
}

type contactFormView struct {
	Subjects []catalog.Subject
	Values   contactForm
	Alert    *alertView
}

type contactData struct {
	page
	Info []catalog.ContactEntry
	Form contactFormView
}

type galleryData struct {
	page
	Categories []string
	Active     string
	Images     []catalog.GalleryImage
}

type detailData struct {
	page
	Image *catalog.ImageDetail
}

type profileCard struct {
	Profile catalog.Profile
	Editing bool
	Alert   *alertView
}

type profileData struct {
	page
	Card   profileCard
	Images []catalog.ProfileImage
	Stats  catalog.ProfileStats
}

type draftImageView struct {
	*database.Image
	PriceLabel string
	First      bool
	Last       bool
}

type draftView struct {
	Images []draftImageView
	OOB    bool
}

type uploadData struct {
	page
	Categories []string
	Currency   string
	MaxMB      int64
	MaxFiles   int
	Draft      draftView
}

type uploadResult struct {
	Alert alertView
	Draft *draftView
}

type linkResult struct {
	Link  *core.Link
	Alert *alertView
}

type collectionImageView struct {
	core.CollectionImage
	PriceLabel string
}

type collectionData struct {
	page
	Collection *core.Collection
	Images     []collectionImageView
	Total      string
}

func newDraftView(images []*database.Image, currency string, oob bool) draftView {
	view := draftView{Images: make([]draftImageView, len(images)), OOB: oob}
	for i, img := range images {
		view.Images[i] = draftImageView{
			Image:      img,
			PriceLabel: core.Price(img.PriceMinor).Label(currency),
			First:      i == 0,
			Last:       i == len(images)-1,
		}
	}
	return view
}

func newCollectionData(collection *core.Collection) collectionData {
	data := collectionData{
		page:       page{Title: "Collection", Nav: "upload"},
		Collection: collection,
		Images:     make([]collectionImageView, len(collection.Images)),
		Total:      core.FormatAmount(collection.Total(), collection.Currency),
	}
	for i, img := range collection.Images {
		data.Images[i] = collectionImageView{
			CollectionImage: img,
			PriceLabel:      img.Price.Label(collection.Currency),
		}
	}
	return data
}

// uploadCategories are the gallery categories without the "All" filter.
func uploadCategories() []string {
	out := make([]string, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		if c != catalog.AllCategories {
			out = append(out, c)
		}
	}
	return out
}
