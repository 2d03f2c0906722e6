package consult

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/hukumku/consult-gateway/internal/entity"
	"go.uber.org/zap"
)

// MockConnector replays a deterministic consultation flow so the gateway can
// run without the AI backend.
type MockConnector struct {
	logger *zap.Logger

	mu    sync.Mutex
	turns map[string]int
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
		turns:  make(map[string]int),
	}
}

// SendMessage walks the canned flow: clarification on the first turn,
// analysis with feature offerings on the second, synthesis afterwards.
func (m *MockConnector) SendMessage(ctx context.Context, req *entity.SendMessageRequest) (
	*entity.SendMessageResponse, error,
) {
	ctxzap.Info(ctx, "[MOCK] handling consultation turn")

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	m.mu.Lock()
	turn := m.turns[sessionID]
	m.turns[sessionID] = turn + 1
	m.mu.Unlock()

	resp := &entity.SendMessageResponse{
		SessionID: sessionID,
		MessageID: uuid.New().String(),
	}

	switch turn {
	case 0:
		resp.ConversationStage = entity.StageClarification
		resp.AIResponse = "Terima kasih atas pertanyaan Anda. Agar jawaban saya tepat, mohon jawab beberapa pertanyaan berikut."
		resp.Questions = []entity.ClarificationQuestion{
			{Question: "Apakah Anda sudah menandatangani kontrak tertulis?", Type: entity.AnswerTypeYesNo, Required: true},
			{Question: "Kapan hubungan kerja dimulai?", Type: entity.AnswerTypeDate, Required: true},
			{Question: "Jenis kontrak kerja Anda?", Type: entity.AnswerTypeMultipleChoice, Choices: []string{"PKWT", "PKWTT", "Tidak tahu"}, Required: true},
			{Question: "Ceritakan situasi Anda secara singkat", Type: entity.AnswerTypeText, Required: false},
		}
	case 1:
		resp.ConversationStage = entity.StageFeatureOffering
		resp.AIResponse = "Berdasarkan jawaban Anda, kontrak kerja harus memenuhi syarat sah menurut Pasal 52 UU Ketenagakerjaan: kesepakatan, kecakapan, pekerjaan yang diperjanjikan, dan tidak bertentangan dengan ketertiban umum. Saya dapat membantu lebih jauh dengan fitur berikut."
		resp.FeatureOfferings = []entity.FeatureOffering{
			{
				FeatureID:    "document_analysis",
				Name:         "Analisis Dokumen",
				Description:  "Tinjauan pasal per pasal atas kontrak kerja Anda",
				RequiredTier: entity.TierProfessional,
				TimeEstimate: "2-3 menit",
			},
			{
				FeatureID:    "contract_drafting",
				Name:         "Penyusunan Kontrak",
				Description:  "Draf kontrak kerja yang sesuai dengan situasi Anda",
				RequiredTier: entity.TierPremium,
				Price:        "Rp 150.000",
			},
		}
	default:
		resp.ConversationStage = entity.StageSynthesis
		resp.AIResponse = "Ringkasan konsultasi: kontrak kerja Anda perlu memuat identitas para pihak, jenis pekerjaan, besaran upah, dan jangka waktu. Simpan ringkasan ini atau ajukan pertanyaan lanjutan."
	}

	return resp, nil
}

// ExecuteFeature returns a canned feature result.
func (m *MockConnector) ExecuteFeature(ctx context.Context, req *entity.ExecuteFeatureRequest) (
	*entity.ExecuteFeatureResponse, error,
) {
	ctxzap.Info(ctx, "[MOCK] executing feature", zap.String("feature_id", req.FeatureID))

	result, _ := json.Marshal(map[string]any{
		"feature_id": req.FeatureID,
		"summary":    "Hasil analisis contoh untuk fitur " + req.FeatureID,
		"findings": []string{
			"Klausul masa percobaan melebihi 3 bulan",
			"Tidak ada ketentuan upah lembur",
		},
	})

	return &entity.ExecuteFeatureResponse{Result: result}, nil
}
