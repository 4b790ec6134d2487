package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/capturehost/internal/api/models"
	"github.com/smazurov/capturehost/internal/desktop"
)

// DesktopSourcesInput lists the media types to enumerate.
type DesktopSourcesInput struct {
	Types string `query:"types" default:"screen,window" example:"screen,window" doc:"Comma-separated media types (screen, window)"`
}

func (s *Server) registerDesktopRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-desktop-sources",
		Method:      http.MethodGet,
		Path:        "/api/desktop/sources",
		Summary:     "Desktop Sources",
		Description: "Screens and windows available for desktop capture",
		Tags:        []string{"desktop"},
		Security:    withAuth(),
		Errors:      []int{400, 401},
	}, s.desktopSources)
}

func (s *Server) desktopSources(ctx context.Context, input *DesktopSourcesInput) (*models.DesktopSourcesResponse, error) {
	types, err := parseMediaTypes(input.Types)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	var lists []desktop.MediaList
	err = s.onUI(ctx, func(ctx context.Context) error {
		lists = s.options.Dispatcher.CreateMediaList(ctx, types)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Capturers may touch the filesystem, so lists are populated off the UI thread.
	data := models.DesktopSourcesData{Lists: make([]models.MediaListData, 0, len(lists))}
	for _, list := range lists {
		entry := models.MediaListData{Type: list.Type().String()}
		if err := list.Update(ctx); err != nil {
			entry.Error = err.Error()
		}
		entry.Sources = models.FromSources(list.Sources())
		data.Lists = append(data.Lists, entry)
	}
	return &models.DesktopSourcesResponse{Body: data}, nil
}

// parseMediaTypes parses a comma-separated media type list.
func parseMediaTypes(s string) ([]desktop.MediaIDType, error) {
	var types []desktop.MediaIDType
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		t, err := desktop.ParseMediaIDType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}
