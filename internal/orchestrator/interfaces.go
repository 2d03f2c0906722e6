package orchestrator

import (
	"context"

	"github.com/hukumku/consult-gateway/internal/entity"
)

// ConsultConnector is the consultation backend as seen by the orchestrator.
type ConsultConnector interface {
	SendMessage(ctx context.Context, req *entity.SendMessageRequest) (*entity.SendMessageResponse, error)
	ExecuteFeature(ctx context.Context, req *entity.ExecuteFeatureRequest) (*entity.ExecuteFeatureResponse, error)
}
