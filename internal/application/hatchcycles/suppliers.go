package hatchcycles

import (
	"context"
	"errors"
	"strings"

	"hatchery-backend/internal/application/gateway"
	"hatchery-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

// FlockDirectory resolves supplier names through the flocks table.
type FlockDirectory struct {
	Flocks *gateway.Table[domain.Flock]
}

// SupplierFor returns the supplier of the flock with the given number. A blank
// number, an unknown flock and a failed lookup all resolve to "".
func (d FlockDirectory) SupplierFor(ctx context.Context, flockNumber string) (string, error) {
	flockNumber = strings.TrimSpace(flockNumber)
	if flockNumber == "" || d.Flocks == nil {
		return "", nil
	}
	f, err := d.Flocks.FindOne(ctx, "flock_number", flockNumber)
	if err != nil {
		if !errors.Is(err, gateway.ErrNotFound) {
			log.Warn().Err(err).Str("flock_number", flockNumber).Msg("hatchcycles: supplier lookup failed")
		}
		return "", nil
	}
	return f.SupplierName, nil
}
