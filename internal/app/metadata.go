package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"livebundle/internal/types"
)

func (s Service) FetchMetadata(ctx context.Context, req MetadataRequest) (MetadataResult, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		return MetadataResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("metadata id is required")
	}
	result := MetadataResult{
		Kind: req.Kind,
		ID:   id,
		URL:  s.Config.Storage.MetadataURL(req.Kind, id),
	}
	switch req.Kind {
	case types.MetadataKindPackage:
		metadata, err := s.Metadata.FetchPackageMetadata(ctx, id)
		if err != nil {
			return result, err
		}
		result.Package = &metadata
	case types.MetadataKindSession:
		metadata, err := s.Metadata.FetchSessionMetadata(ctx, id)
		if err != nil {
			return result, err
		}
		result.Session = &metadata
	default:
		return result, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown metadata kind: %s", req.Kind))
	}
	return result, nil
}
