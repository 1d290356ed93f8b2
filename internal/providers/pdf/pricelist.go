// Package pdf renders owner-facing documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"go.uber.org/fx"
)

type Provider interface {
	GeneratePriceList(ctx context.Context, matrix *catalogdomain.Matrix) (io.Reader, error)
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

// GeneratePriceList renders the product x tier grid of final prices.
func (p *PDFProvider) GeneratePriceList(ctx context.Context, matrix *catalogdomain.Matrix) (io.Reader, error) {
	if matrix == nil {
		return nil, fmt.Errorf("price list data is empty")
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(12, "Daftar Harga Anggota", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(15,
		col.New(12).Add(
			text.New(matrix.KoperasiName, props.Text{Style: fontstyle.Bold}),
			text.New("Berlaku per "+matrix.AsOf.Format("2 January 2006"), props.Text{Top: 5, Size: 9}),
		),
	)

	m.AddRow(10,
		text.NewCol(2, "Kode", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Produk", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Umum", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Anggota", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Anggota Usaha", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, row := range matrix.Rows {
		m.AddRow(10,
			text.NewCol(2, row.Code, props.Text{Size: 9}),
			text.NewCol(4, row.Name, props.Text{Size: 9}),
			text.NewCol(2, formatRupiah(row.Prices[tier.TierUmum]), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatRupiah(row.Prices[tier.TierMember]), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, formatRupiah(row.Prices[tier.TierMemberUsaha]), props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

// formatRupiah renders minor units with Indonesian thousands dots.
func formatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return sign + "Rp" + strings.Join(groups, ".")
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
