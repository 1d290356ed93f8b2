package pdf

import (
	"context"
	"io"
	"testing"
	"time"

	catalogdomain "github.com/sentrakoop/sentra/internal/catalog/domain"
	"github.com/sentrakoop/sentra/internal/tier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePriceList(t *testing.T) {
	provider := New()

	matrix := &catalogdomain.Matrix{
		KoperasiID:   "1",
		KoperasiName: "Koperasi Warga Sejahtera",
		AsOf:         time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Rows: []catalogdomain.MatrixRow{
			{
				ProductID: "10",
				Code:      "BRS-001",
				Name:      "Beras Premium 5kg",
				BasePrice: 78_000,
				Prices: map[tier.Tier]int64{
					tier.TierUmum:        78_000,
					tier.TierMember:      70_200,
					tier.TierMemberUsaha: 62_400,
				},
			},
		},
	}

	reader, err := provider.GeneratePriceList(context.Background(), matrix)
	require.NoError(t, err)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// PDF magic bytes
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGeneratePriceListRejectsNil(t *testing.T) {
	provider := New()
	_, err := provider.GeneratePriceList(context.Background(), nil)
	assert.Error(t, err)
}

func TestFormatRupiah(t *testing.T) {
	assert.Equal(t, "Rp0", formatRupiah(0))
	assert.Equal(t, "Rp950", formatRupiah(950))
	assert.Equal(t, "Rp78.000", formatRupiah(78_000))
	assert.Equal(t, "Rp1.250.000", formatRupiah(1_250_000))
	assert.Equal(t, "-Rp5.000", formatRupiah(-5_000))
}
