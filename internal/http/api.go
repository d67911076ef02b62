package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/export"
	"github.com/fairyhunter13/price-stock-merger/internal/pipeline"
)

// RegionInfo describes a configured region.
type RegionInfo struct {
	Code             string     `json:"code" doc:"Region code" example:"UK"`
	OutputName       string     `json:"output_name" doc:"File name of the merged CSV" example:"data_UK.csv"`
	LatestArtifactID string     `json:"latest_artifact_id,omitempty" doc:"ID of the most recent artifact"`
	GeneratedAt      *time.Time `json:"generated_at,omitempty" doc:"When the most recent artifact was produced"`
}

// RegionsOutput lists the configured regions.
type RegionsOutput struct {
	Body struct {
		Regions []RegionInfo `json:"regions"`
	}
}

// RegionInput selects a region by path.
type RegionInput struct {
	Region string `path:"region" maxLength:"8" doc:"Region code, case-insensitive" example:"UK"`
}

// ArtifactOutput carries artifact metadata.
type ArtifactOutput struct {
	Body struct {
		ID          string    `json:"id"`
		Region      string    `json:"region"`
		FileName    string    `json:"file_name"`
		Rows        int       `json:"rows"`
		Sequence    uint64    `json:"sequence"`
		GeneratedAt time.Time `json:"generated_at"`
	}
}

// CSVOutput is a merged CSV returned as a download.
type CSVOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	ArtifactID         string `header:"X-Artifact-Id"`
	RowCount           int    `header:"X-Row-Count"`
	Body               []byte
}

func (a *App) registerAPI(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listRegions",
		Method:      http.MethodGet,
		Path:        "/api/v1/regions",
		Summary:     "List regions",
		Tags:        []string{"Regions"},
	}, a.handleListRegions)

	huma.Register(api, huma.Operation{
		OperationID: "getLatestArtifact",
		Method:      http.MethodGet,
		Path:        "/api/v1/regions/{region}/artifact",
		Summary:     "Latest artifact metadata",
		Tags:        []string{"Regions"},
	}, a.handleLatestArtifact)

	huma.Register(api, huma.Operation{
		OperationID: "processRegion",
		Method:      http.MethodPost,
		Path:        "/api/v1/regions/{region}/process",
		Summary:     "Run the merge for a region",
		Description: "Downloads both reports, merges them and returns the CSV. The result also becomes the region's latest artifact.",
		Tags:        []string{"Regions"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Merged CSV",
				Content:     map[string]*huma.MediaType{"text/csv": {}},
			},
		},
	}, a.handleProcessRegion)
}

func (a *App) handleListRegions(_ context.Context, _ *struct{}) (*RegionsOutput, error) {
	out := &RegionsOutput{}
	out.Body.Regions = []RegionInfo{}
	for _, r := range a.Export.Regions() {
		info := RegionInfo{Code: r.Code, OutputName: r.OutputName}
		if art, ok := a.Export.Latest(r.Code); ok {
			info.LatestArtifactID = art.ID
			generated := art.GeneratedAt
			info.GeneratedAt = &generated
		}
		out.Body.Regions = append(out.Body.Regions, info)
	}
	return out, nil
}

func (a *App) handleLatestArtifact(_ context.Context, in *RegionInput) (*ArtifactOutput, error) {
	art, ok := a.Export.Latest(in.Region)
	if !ok {
		return nil, huma.Error404NotFound("no artifact for region " + in.Region)
	}
	out := &ArtifactOutput{}
	out.Body.ID = art.ID
	out.Body.Region = art.Region
	out.Body.FileName = art.FileName
	out.Body.Rows = art.Rows
	out.Body.Sequence = art.Sequence
	out.Body.GeneratedAt = art.GeneratedAt
	return out, nil
}

func (a *App) handleProcessRegion(ctx context.Context, in *RegionInput) (*CSVOutput, error) {
	if a.closing.Load() {
		return nil, huma.Error503ServiceUnavailable("shutting down")
	}
	art, err := a.Export.Process(ctx, in.Region)
	if err != nil {
		return nil, apiError(err)
	}
	return &CSVOutput{
		ContentType:        "text/csv; charset=utf-8",
		ContentDisposition: contentDisposition(art.FileName),
		ArtifactID:         art.ID,
		RowCount:           art.Rows,
		Body:               art.CSV,
	}, nil
}

func apiError(err error) error {
	switch {
	case errors.Is(err, export.ErrUnknownRegion):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, pipeline.ErrRetrieval):
		return huma.Error502BadGateway(retrievalMessage(err), err)
	case errors.Is(err, pipeline.ErrParse):
		return huma.Error502BadGateway("source data could not be parsed", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout("processing timed out", err)
	default:
		return huma.Error500InternalServerError(msgProcessFailed, err)
	}
}
