package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/stock-tracker/internal/domain/catalog"
)

// maybeNotifyLowStock шлёт в админ-чат алерты по товару после упаковки или продажи.
func (b *Bot) maybeNotifyLowStock(parentID catalog.ProductID) {
	if b.adminChat == 0 {
		return
	}
	alerts := b.tr.AlertsFor(parentID)
	if len(alerts) == 0 {
		return
	}
	b.send(tgbotapi.NewMessage(b.adminChat, formatAlerts(alerts)))
}
