package keyboard

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/hukumku/consult-gateway/internal/clarify"
	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/offering"
)

// Builder creates inline keyboards
type Builder struct{}

// NewBuilder creates a keyboard builder
func NewBuilder() *Builder {
	return &Builder{}
}

// QuestionKeyboard renders the answer controls for one clarification
// question. Free-text questions get no keyboard; choices are referenced by
// index to stay inside Telegram's 64-byte callback data limit.
func (b *Builder) QuestionKeyboard(q entity.ClarificationQuestion) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	switch q.Type {
	case entity.AnswerTypeYesNo:
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Ya", EncodeCallback("ans", clarify.AnswerYes)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Tidak", EncodeCallback("ans", clarify.AnswerNo)),
		))
	case entity.AnswerTypeMultipleChoice:
		for i, choice := range q.Choices {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(choice, EncodeCallback("choice", strconv.Itoa(i))),
			))
		}
	default:
		// text, date and number answers arrive as plain messages
	}

	if !q.Required {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Lewati", EncodeCallback("clarify", "skip")),
		))
	}

	if len(rows) == 0 {
		return nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// OfferingsKeyboard renders one button per presented offering. Accessible
// offerings trigger execution; the rest lead to the upgrade prompt, so a
// forbidden feature is never selectable.
func (b *Builder) OfferingsKeyboard(offerings []offering.Presented) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, p := range offerings {
		label := fmt.Sprintf("▶️ %s", p.Offering.Name)
		action := EncodeCallback("feat", p.Offering.FeatureID)
		if !p.Accessible {
			label = fmt.Sprintf("🔒 %s (%s)", p.Offering.Name, p.Offering.RequiredTier)
			action = EncodeCallback("upgrade", p.Offering.FeatureID)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, action),
		))
	}

	if len(rows) == 0 {
		return nil
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

// ExportKeyboard offers the transcript download formats.
func (b *Builder) ExportKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 Markdown", EncodeCallback("export", "md")),
			tgbotapi.NewInlineKeyboardButtonData("📑 PDF", EncodeCallback("export", "pdf")),
			tgbotapi.NewInlineKeyboardButtonData("📝 DOCX", EncodeCallback("export", "docx")),
		),
	)
	return &markup
}

// TierKeyboard lets a user declare their subscription tier.
func (b *Builder) TierKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Free", EncodeCallback("tier", string(entity.TierFree))),
			tgbotapi.NewInlineKeyboardButtonData("Professional", EncodeCallback("tier", string(entity.TierProfessional))),
			tgbotapi.NewInlineKeyboardButtonData("Premium", EncodeCallback("tier", string(entity.TierPremium))),
		),
	)
	return &markup
}

// ConfirmResetKeyboard asks for confirmation before discarding a chat.
func (b *Builder) ConfirmResetKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Ya, mulai ulang", EncodeCallback("confirm", "reset")),
			tgbotapi.NewInlineKeyboardButtonData("❌ Tidak, lanjutkan", EncodeCallback("confirm", "keep")),
		),
	)
	return &markup
}
