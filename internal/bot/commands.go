package bot

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
	"github.com/Spok95/stock-tracker/internal/report"
)

type reply struct {
	text string
	doc  *tgbotapi.FileBytes
	// touched: товар, по которому после ответа проверяются остатки
	touched catalog.ProductID
}

func textReply(format string, a ...any) reply { return reply{text: fmt.Sprintf(format, a...)} }

const defaultHistory = 10

func (b *Bot) execute(ctx context.Context, command, rawArgs string) reply {
	a := parseArgs(rawArgs)
	var (
		r   reply
		err error
	)
	switch command {
	case "start", "help":
		return reply{text: helpText}
	case "products":
		r = b.cmdProducts()
	case "stock":
		r, err = b.cmdStock(a)
	case "inward":
		r, err = b.cmdInward(ctx, a)
	case "pack":
		r, err = b.cmdPack(ctx, a)
	case "sell":
		r, err = b.cmdSell(ctx, a)
	case "alerts":
		r = reply{text: formatAlerts(b.tr.Alerts())}
	case "value":
		r = b.cmdValue()
	case "sales":
		r, err = b.cmdSales(rawArgs)
	case "history":
		r, err = b.cmdHistory(a)
	case "export":
		r, err = b.cmdExport()
	case "addproduct":
		r, err = b.cmdAddProduct(ctx, rawArgs)
	case "addvariant":
		r, err = b.cmdAddVariant(ctx, a)
	case "price":
		r, err = b.cmdPrice(ctx, a)
	default:
		return reply{text: "Неизвестная команда. Справка: /help"}
	}
	if err != nil {
		return reply{text: b.userMessage(err)}
	}
	return r
}

func (b *Bot) product(ref string) (catalog.ParentItem, error) {
	return b.tr.FindProduct(ref)
}

func (b *Bot) cmdProducts() reply {
	products := b.tr.Products()
	if len(products) == 0 {
		return reply{text: "Товаров пока нет. Добавить: /addproduct"}
	}
	var sb strings.Builder
	for _, p := range products {
		fmt.Fprintf(&sb, "%s — %s (%s, %s)\n", p.ID, p.Name, p.Category, p.Unit)
		vs, _ := b.tr.Variants(p.ID)
		for _, v := range vs {
			fmt.Fprintf(&sb, "   • %s: %s %s, %s\n", v.ID, v.WeightPerUnit, p.Unit, analytics.FormatMoney(v.UnitPrice))
		}
	}
	return reply{text: strings.TrimRight(sb.String(), "\n")}
}

func (b *Bot) cmdStock(a args) (reply, error) {
	if len(a.pos) == 0 {
		return reply{text: formatSummary(b.tr.Summary())}, nil
	}
	p, err := b.product(a.rest(0))
	if err != nil {
		return reply{}, err
	}
	rec := b.tr.Stock(p.ID)
	var sb strings.Builder
	fmt.Fprintf(&sb, "📦 %s\nРоссыпь: %s\n", p.Name, qty(rec.Loose, p.Unit))
	vs, _ := b.tr.Variants(p.ID)
	for _, v := range vs {
		maxPack, _ := b.tr.MaxPackable(p.ID, v.ID)
		fmt.Fprintf(&sb, "— %s: %d шт. (можно упаковать ещё %d)\n", catalog.Label(p, v), rec.Packed[v.ID], maxPack)
	}
	return reply{text: strings.TrimRight(sb.String(), "\n")}, nil
}

func (b *Bot) cmdInward(ctx context.Context, a args) (reply, error) {
	if len(a.pos) < 2 {
		return reply{}, errUsage
	}
	p, err := b.product(a.pos[0])
	if err != nil {
		return reply{}, err
	}
	w, err := parseDecimal(a.pos[1])
	if err != nil {
		return reply{}, errUsage
	}
	date, err := a.date()
	if err != nil {
		return reply{}, errUsage
	}
	tx, err := b.tr.RecordInward(ctx, p.ID, w, date, a.rest(2))
	if err != nil {
		return reply{}, err
	}
	return textReply("✅ Приход #%d: %s +%s\nРоссыпь: %s",
		tx.ID, p.Name, qty(tx.Weight, p.Unit), qty(b.tr.Stock(p.ID).Loose, p.Unit)), nil
}

func (b *Bot) cmdPack(ctx context.Context, a args) (reply, error) {
	if len(a.pos) < 3 {
		return reply{}, errUsage
	}
	p, err := b.product(a.pos[0])
	if err != nil {
		return reply{}, err
	}
	n, err := parseCount(a.pos[2])
	if err != nil {
		return reply{}, errUsage
	}
	date, err := a.date()
	if err != nil {
		return reply{}, errUsage
	}
	vid := catalog.VariantID(a.pos[1])
	tx, err := b.tr.RecordPacking(ctx, p.ID, vid, n, date, a.rest(3))
	if err != nil {
		return reply{}, err
	}
	rec := b.tr.Stock(p.ID)
	r := textReply("✅ Упаковка #%d: %s × %d (%s)\nРоссыпь: %s, упаковано %s: %d шт.",
		tx.ID, vid, n, qty(tx.Weight, p.Unit), qty(rec.Loose, p.Unit), vid, rec.Packed[vid])
	r.touched = p.ID
	return r, nil
}

func (b *Bot) cmdSell(ctx context.Context, a args) (reply, error) {
	if len(a.pos) < 3 {
		return reply{}, errUsage
	}
	p, err := b.product(a.pos[0])
	if err != nil {
		return reply{}, err
	}
	n, err := parseCount(a.pos[2])
	if err != nil {
		return reply{}, errUsage
	}
	date, err := a.date()
	if err != nil {
		return reply{}, errUsage
	}
	kind, err := inventory.ParseSaleKind(a.opts["kind"])
	if err != nil {
		return reply{}, err
	}
	vid := catalog.VariantID(a.pos[1])
	tx, err := b.tr.RecordSale(ctx, p.ID, vid, kind, n, date, a.opts["order"], a.rest(3))
	if err != nil {
		return reply{}, err
	}
	r := textReply("✅ %s #%d: %s × %d\nОсталось %s: %d шт.",
		tx.Channel, tx.ID, vid, n, vid, b.tr.Stock(p.ID).Packed[vid])
	r.touched = p.ID
	return r, nil
}

func (b *Bot) cmdValue() reply {
	lines := b.tr.ValueLines()
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 Стоимость упакованного товара: %s\n", analytics.FormatMoney(b.tr.Valuation()))
	for _, l := range lines {
		fmt.Fprintf(&sb, "— %s: %d × %s = %s\n", l.Label, l.Units, analytics.FormatMoney(l.UnitPrice), analytics.FormatMoney(l.Value))
	}
	sb.WriteString("Россыпь не оценивается.")
	return reply{text: sb.String()}
}

func (b *Bot) cmdSales(rawArgs string) (reply, error) {
	name := strings.TrimSpace(rawArgs)
	if name == "" {
		name = "last 7 days"
	}
	dr, err := analytics.FindRange(b.tr.Today(), name)
	if err != nil {
		return reply{}, errUsage
	}
	f := dr.Filter()
	f.Kinds = []inventory.Kind{inventory.KindSale}

	days := b.tr.DailySales(f)
	if len(days) == 0 {
		return textReply("Продаж за период «%s» (%s … %s) нет", dr.Name, dr.From, dr.To), nil
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 Продажи: %s (%s … %s)\n", dr.Name, dr.From, dr.To)
	for _, d := range days {
		fmt.Fprintf(&sb, "%s: %d шт., %s, заказов %d\n", d.Date, d.Units, d.Weight, d.Orders)
	}
	sb.WriteString("По товарам:\n")
	for _, s := range b.tr.SalesByProduct(f) {
		fmt.Fprintf(&sb, "— %s: %d шт., %s, выручка %s\n", s.ProductName, s.Units, s.Weight, analytics.FormatMoney(s.Revenue))
	}
	return reply{text: strings.TrimRight(sb.String(), "\n")}, nil
}

func (b *Bot) cmdHistory(a args) (reply, error) {
	n := int64(defaultHistory)
	if len(a.pos) > 0 {
		v, err := parseCount(a.pos[0])
		if err != nil || v <= 0 {
			return reply{}, errUsage
		}
		n = v
	}
	var txs []inventory.Transaction
	for tx := range b.tr.Transactions(inventory.Filter{}) {
		txs = append(txs, tx)
	}
	if len(txs) == 0 {
		return reply{text: "Операций пока нет"}, nil
	}
	if int64(len(txs)) > n {
		txs = txs[int64(len(txs))-n:]
	}
	slices.Reverse(txs)
	lines := make([]string, 0, len(txs))
	for _, tx := range txs {
		lines = append(lines, formatTransaction(tx))
	}
	return reply{text: strings.Join(lines, "\n")}, nil
}

func (b *Bot) cmdExport() (reply, error) {
	now := b.tr.Now()
	buf := &bytes.Buffer{}
	if err := report.Write(buf, report.Collect(b.tr, inventory.Filter{}, now)); err != nil {
		return reply{}, fmt.Errorf("export: %w", err)
	}
	return reply{
		text: fmt.Sprintf("Отчёт на %s", now.Format("02.01.2006 15:04")),
		doc: &tgbotapi.FileBytes{
			Name:  fmt.Sprintf("stock_report_%s.xlsx", now.Format("20060102_150405")),
			Bytes: buf.Bytes(),
		},
	}, nil
}

// /addproduct Basmati Rice; Rice; kg
func (b *Bot) cmdAddProduct(ctx context.Context, rawArgs string) (reply, error) {
	parts := strings.Split(rawArgs, ";")
	if len(parts) != 3 {
		return reply{}, errUsage
	}
	p, err := b.tr.RegisterProduct(ctx, parts[0], parts[1], catalog.Unit(parts[2]))
	if err != nil {
		return reply{}, err
	}
	return textReply("✅ Товар добавлен: %s (%s)", p.Name, p.ID), nil
}

func (b *Bot) cmdAddVariant(ctx context.Context, a args) (reply, error) {
	if len(a.pos) < 4 {
		return reply{}, errUsage
	}
	p, err := b.product(a.pos[0])
	if err != nil {
		return reply{}, err
	}
	w, err := parseDecimal(a.pos[2])
	if err != nil {
		return reply{}, errUsage
	}
	price, err := parseDecimal(a.pos[3])
	if err != nil {
		return reply{}, errUsage
	}
	v, err := b.tr.AddVariant(ctx, p.ID, catalog.VariantID(a.pos[1]), w, a.rest(4), price)
	if err != nil {
		return reply{}, err
	}
	return textReply("✅ Упаковка добавлена: %s, %s", catalog.Label(p, v), analytics.FormatMoney(v.UnitPrice)), nil
}

func (b *Bot) cmdPrice(ctx context.Context, a args) (reply, error) {
	if len(a.pos) < 3 {
		return reply{}, errUsage
	}
	p, err := b.product(a.pos[0])
	if err != nil {
		return reply{}, err
	}
	price, err := parseDecimal(a.pos[2])
	if err != nil {
		return reply{}, errUsage
	}
	v, err := b.tr.UpdateVariant(ctx, p.ID, catalog.VariantID(a.pos[1]), "", price)
	if err != nil {
		return reply{}, err
	}
	return textReply("✅ Цена %s: %s", catalog.Label(p, v), analytics.FormatMoney(v.UnitPrice)), nil
}
