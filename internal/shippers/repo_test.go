package shippers

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/db/dbtest"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

func TestRepositoryListOrdersByCompanyName(t *testing.T) {
	ctx := context.Background()
	r := NewRepository(dbtest.Open(t))

	for _, s := range []models.Shipper{
		{CompanyName: "United Package", CarrierCode: enums.CarrierUPS},
		{CompanyName: "DHL Express", CarrierCode: enums.CarrierDHL},
		{CompanyName: "Federal Shipping", CarrierCode: enums.CarrierFedEx},
	} {
		s := s
		_, err := r.Create(ctx, &s)
		require.NoError(t, err)
	}

	list, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "DHL Express", list[0].CompanyName)
	require.Equal(t, enums.CarrierDHL, list[0].CarrierCode)
	require.Equal(t, "United Package", list[2].CompanyName)
}
