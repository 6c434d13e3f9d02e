package bot

import (
	"context"
	"iter"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

// Tracker: операции склада, которые использует бот.
type Tracker interface {
	Products() []catalog.ParentItem
	FindProduct(ref string) (catalog.ParentItem, error)
	Variants(parentID catalog.ProductID) ([]catalog.PacketVariant, error)
	RegisterProduct(ctx context.Context, name, category string, unit catalog.Unit) (catalog.ParentItem, error)
	AddVariant(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, weightPerUnit decimal.Decimal, description string, unitPrice decimal.Decimal) (catalog.PacketVariant, error)
	UpdateVariant(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, description string, unitPrice decimal.Decimal) (catalog.PacketVariant, error)

	RecordInward(ctx context.Context, parentID catalog.ProductID, weight decimal.Decimal, date inventory.Date, notes string) (inventory.Transaction, error)
	RecordPacking(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, count int64, date inventory.Date, notes string) (inventory.Transaction, error)
	RecordSale(ctx context.Context, parentID catalog.ProductID, variantID catalog.VariantID, kind inventory.SaleKind, units int64, date inventory.Date, orderRef, notes string) (inventory.Transaction, error)
	MaxPackable(parentID catalog.ProductID, variantID catalog.VariantID) (int64, error)
	Stock(parentID catalog.ProductID) inventory.StockRecord
	Transactions(f inventory.Filter) iter.Seq[inventory.Transaction]
	Today() inventory.Date
	Now() time.Time

	Summary() []analytics.ProductSummary
	Valuation() decimal.Decimal
	ValueLines() []analytics.ValueLine
	Alerts() []analytics.Alert
	AlertsFor(parentID catalog.ProductID) []analytics.Alert
	DailySales(f inventory.Filter) []analytics.DaySales
	SalesByProduct(f inventory.Filter) []analytics.ProductSales
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	out       sender
	log       *slog.Logger
	tr        Tracker
	adminChat int64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger, tr Tracker, adminChatID int64) *Bot {
	return &Bot{api: api, out: api, log: log, tr: tr, adminChat: adminChatID}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd.Message)
			}
		}
	}
}

func (b *Bot) onMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if !msg.IsCommand() {
		b.send(tgbotapi.NewMessage(chatID, "Команды: /help"))
		return
	}

	r := b.execute(ctx, msg.Command(), msg.CommandArguments())
	if r.doc != nil {
		doc := tgbotapi.NewDocument(chatID, *r.doc)
		doc.Caption = r.text
		b.send(doc)
	} else {
		m := tgbotapi.NewMessage(chatID, r.text)
		m.DisableWebPagePreview = true
		b.send(m)
	}
	if r.touched != "" {
		b.maybeNotifyLowStock(r.touched)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.out.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}
