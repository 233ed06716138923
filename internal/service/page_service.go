package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/hatokurandom/hatokurandom/internal/pid"
	"github.com/hatokurandom/hatokurandom/internal/render"
	"github.com/hatokurandom/hatokurandom/internal/supply"
)

var ErrPageNotFound = errors.New("page not found")

var pageTemplates = []string{"home", "about", "supplies", "supply-link", "supply", "card"}

// PageService renders the pages of the UI from their pid.
type PageService struct {
	templates *render.Templates
	supplies  *SupplyService
	title     string
	version   string
}

// NewPageService fails when templates lacks one of the page templates.
func NewPageService(templates *render.Templates, supplies *SupplyService, title, version string) (*PageService, error) {
	for _, id := range pageTemplates {
		if !templates.Has(id) {
			return nil, fmt.Errorf("%w: %q", render.ErrTemplateNotFound, id)
		}
	}
	return &PageService{
		templates: templates,
		supplies:  supplies,
		title:     title,
		version:   version,
	}, nil
}

// Render returns the HTML of the page named by p.
func (s *PageService) Render(ctx context.Context, p string) (string, error) {
	id := pid.Parse(p)
	if id.APID == "" {
		id.APID = "home"
	}

	var (
		page *render.Fragment
		err  error
	)
	switch id.APID {
	case "home":
		page, err = s.templates.Render("home", map[string]string{"title": s.title})
	case "about":
		page, err = s.templates.Render("about", map[string]string{"version": s.version})
	case "supplies":
		page, err = s.renderSupplies(id.Params)
	case "supply":
		page, err = s.renderSupply(ctx, id.Params)
	default:
		return "", fmt.Errorf("%w: %q", ErrPageNotFound, p)
	}
	if err != nil {
		return "", err
	}
	return page.OuterHTML(), nil
}

func (s *PageService) renderSupplies(expansion string) (*render.Fragment, error) {
	page, err := s.templates.Render("supplies", map[string]string{
		"title":     "Supplies",
		"expansion": expansion,
	})
	if err != nil {
		return nil, err
	}
	for _, sid := range supply.PredefinedSIDs(expansion) {
		sup, _ := supply.Predefined(sid)
		link, err := s.templates.Render("supply-link", map[string]string{
			"sid":   sid,
			"title": sup.Title,
		})
		if err != nil {
			return nil, err
		}
		page.Append(link)
	}
	return page, nil
}

func (s *PageService) renderSupply(ctx context.Context, sid string) (*render.Fragment, error) {
	resp, err := s.supplies.Describe(ctx, sid)
	if err != nil {
		return nil, err
	}

	page, err := s.templates.Render("supply", map[string]string{
		"sid":       resp.SID,
		"title":     resp.Title,
		"permalink": resp.Permalink,
		"views":     strconv.FormatInt(resp.Views, 10),
	})
	if err != nil {
		return nil, err
	}
	for _, c := range resp.Cards {
		card, err := s.templates.Render("card", map[string]string{
			"cid":  strconv.Itoa(c.CID),
			"name": c.Name,
			"cost": strconv.Itoa(c.Cost),
			"link": strconv.Itoa(c.Link),
		})
		if err != nil {
			return nil, err
		}
		page.Append(card)
	}
	return page, nil
}
