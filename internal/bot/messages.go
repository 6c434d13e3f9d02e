package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stock-tracker/internal/domain/analytics"
	"github.com/Spok95/stock-tracker/internal/domain/catalog"
	"github.com/Spok95/stock-tracker/internal/domain/inventory"
)

const helpText = `Учёт склада:
/products — товары и упаковки
/stock [товар] — остатки
/inward <товар> <вес> [date=ГГГГ-ММ-ДД] [заметка]
/pack <товар> <упаковка> <шт> [date=…] [заметка]
/sell <товар> <упаковка> <шт> [kind=fba|fba-bulk|easyship|easyship-bulk] [order=№] [date=…] [заметка]
/alerts — низкие остатки
/value — стоимость упакованного товара
/sales [период] — продажи (today, yesterday, last_7_days, last_30_days, this_month, last_month)
/history [N] — последние операции
/export — Excel-отчёт
/addproduct <название>; <категория>; <ед.>
/addvariant <товар> <упаковка> <вес> <цена> [описание]
/price <товар> <упаковка> <цена>`

// userMessage переводит ошибку ядра в текст для пользователя.
func (b *Bot) userMessage(err error) string {
	var ise *inventory.InsufficientStockError
	switch {
	case errors.As(err, &ise) && ise.Kind == inventory.KindPack:
		unit := ""
		if p, perr := b.tr.FindProduct(string(ise.ParentID)); perr == nil {
			unit = " " + string(p.Unit)
		}
		return fmt.Sprintf("Недостаточно россыпи: есть %s%s, нужно %s%s. Можно упаковать не больше %d шт.",
			ise.Available, unit, ise.Requested, unit, ise.MaxUnits)
	case errors.As(err, &ise):
		return fmt.Sprintf("Недостаточно упаковок %s: есть %s шт., нужно %s шт.", ise.VariantID, ise.Available, ise.Requested)
	case errors.Is(err, errUsage):
		return "Неверный формат команды. Справка: /help"
	case errors.Is(err, catalog.ErrUnknownProduct):
		return "Товар не найден. Список: /products"
	case errors.Is(err, catalog.ErrUnknownVariant):
		return "Упаковка не найдена. Список: /products"
	case errors.Is(err, catalog.ErrDuplicateProduct):
		return "Такой товар уже есть"
	case errors.Is(err, catalog.ErrDuplicateVariant):
		return "Такая упаковка уже есть"
	case errors.Is(err, catalog.ErrInvalidProduct):
		return "Некорректные данные товара. Единицы: kg, gm, ltr, ml, pcs, packets"
	case errors.Is(err, catalog.ErrInvalidWeight):
		return "Вес упаковки должен быть больше 0"
	case errors.Is(err, catalog.ErrInvalidPrice):
		return "Цена не может быть отрицательной"
	case errors.Is(err, inventory.ErrInvalidQuantity):
		return "Количество должно быть больше 0"
	case errors.Is(err, inventory.ErrInvalidSaleKind):
		kinds := make([]string, 0, len(inventory.SaleKinds))
		for _, k := range inventory.SaleKinds {
			kinds = append(kinds, string(k))
		}
		return "Неизвестный тип продажи. Допустимо: " + strings.Join(kinds, ", ")
	}
	b.log.Error("command failed", "err", err)
	return "Ошибка: операция не выполнена"
}

func qty(d decimal.Decimal, unit catalog.Unit) string {
	return fmt.Sprintf("%s %s", d.String(), unit)
}

func formatSummary(rows []analytics.ProductSummary) string {
	if len(rows) == 0 {
		return "Товаров пока нет. Добавить: /addproduct"
	}
	var sb strings.Builder
	sb.WriteString("📦 Остатки:\n")
	for _, s := range rows {
		fmt.Fprintf(&sb, "— %s: россыпь %s, упаковано %d шт. (%s), всего %s\n",
			s.ProductName, qty(s.Loose, s.Unit), s.PackedUnits, qty(s.PackedWeight, s.Unit), qty(s.TotalWeight, s.Unit))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatAlerts(alerts []analytics.Alert) string {
	if len(alerts) == 0 {
		return "✅ Низких остатков нет"
	}
	var sb strings.Builder
	sb.WriteString("⚠️ Низкий остаток:\n")
	for _, a := range alerts {
		fmt.Fprintf(&sb, "— %s: %s %s (порог %s)\n", a.ProductLabel, a.CurrentStock, a.Unit, a.Threshold)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatTransaction(tx inventory.Transaction) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d %s %s %s", tx.ID, tx.EffectiveDate, tx.Kind.Label(), tx.ParentID)
	if tx.VariantID != "" {
		fmt.Fprintf(&sb, "/%s × %s", tx.VariantID, tx.Quantity)
	}
	fmt.Fprintf(&sb, ", вес %s", tx.Weight)
	if tx.Notes != "" {
		fmt.Fprintf(&sb, " — %s", tx.Notes)
	}
	return sb.String()
}
