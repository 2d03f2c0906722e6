package formatter

import (
	"fmt"
	"strings"

	"github.com/hukumku/consult-gateway/internal/entity"
	"github.com/hukumku/consult-gateway/internal/session"
)

var roleLabels = map[entity.MessageRole]string{
	entity.RoleUser:      "Anda",
	entity.RoleAssistant: "Asisten Hukum",
}

// Transcript flattens a conversation snapshot into the plain text the
// formatters consume.
func Transcript(snap session.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Sesi: %s\n", snap.SessionID)
	fmt.Fprintf(&b, "Tahap: %s\n\n", snap.Stage)

	for _, msg := range snap.Messages {
		label, ok := roleLabels[msg.Role]
		if !ok {
			label = string(msg.Role)
		}
		fmt.Fprintf(&b, "%s (%s):\n%s\n\n", label, msg.CreatedAt.Format("2006-01-02 15:04"), msg.Content)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}
