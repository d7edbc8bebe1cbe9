package paymentapp

import (
	"embed"
	"html/template"

	"github.com/jo-hoe/pixweb/internal/common"
	"github.com/jo-hoe/pixweb/internal/core"
	"github.com/jo-hoe/pixweb/internal/payment"
)

//go:embed views
var templateFS embed.FS

var viewFuncs = template.FuncMap{
	"imageURL": common.DataURL,
	"newAlert": func(message, kind string) alertView {
		return alertView{Message: message, Kind: kind}
	},
}

func newRenderer() (*common.TemplateRenderer, error) {
	return common.NewTemplateRenderer(templateFS, "views/*.html", "views/pages/*.html", viewFuncs)
}

type page struct {
	Title string
}

type alertView struct {
	Message string
	Kind    string
}

type notFoundData struct {
	page
	Heading string
	Message string
}

type singleData struct {
	page
	Offer *offer
	Item  offerItem
}

type summaryView struct {
	CollectionID string
	Selected     []offerItem
	Total        string
	Alert        *alertView
}

type collectionData struct {
	page
	Offer   *offer
	Total   string
	Summary summaryView
}

type statusView struct {
	Session *payment.Session
	Total   string
	// PollMillis is how often the processing view asks for an update.
	PollMillis int64
}

func (v statusView) Processing() bool {
	return v.Session.State == payment.StateProcessing
}

func (v statusView) Success() bool {
	return v.Session.State == payment.StateSuccess
}

func newSummary(o *offer, selected []offerItem) summaryView {
	var total core.Price
	for _, item := range selected {
		total += item.Price
	}
	return summaryView{
		CollectionID: o.CollectionID,
		Selected:     selected,
		Total:        core.FormatAmount(total, o.Currency),
	}
}
