// Package clear implements the clear-taxon-data operation, grounded on
// lib/proteomics/services/clear_taxon_data.py's ClearTaxonDataTask: for
// each named taxon, delete its TaxonDigestPeptide rows (one TaxonDigest at
// a time), then its TaxonDigests, then its TaxonProtein rows, then the
// Taxon row itself.
package clear

import (
	"context"
	"fmt"

	sperrors "github.com/saitomics/proteomics/internal/errors"
	"github.com/saitomics/proteomics/internal/store"
)

// Taxon deletes everything recorded for one taxon id. It returns an
// UnknownTaxonError, without touching the store further, if the taxon does
// not exist; the CLI reports that as a warning and moves on to the next id.
func Taxon(ctx context.Context, gw store.Gateway, taxonID string) error {
	exists, err := gw.TaxonExists(ctx, taxonID)
	if err != nil {
		return err
	}
	if !exists {
		return sperrors.NewUnknownTaxonError(taxonID)
	}

	digests, err := gw.ListTaxonDigests(ctx, taxonID)
	if err != nil {
		return err
	}
	for _, td := range digests {
		if err := gw.DeleteTaxonDigestPeptides(ctx, td.ID); err != nil {
			return fmt.Errorf("clear: taxon %s digest %d: %w", taxonID, td.ID, err)
		}
		if err := gw.DeleteTaxonDigest(ctx, td.ID); err != nil {
			return fmt.Errorf("clear: taxon %s digest %d: %w", taxonID, td.ID, err)
		}
	}

	if err := gw.DeleteTaxonProteins(ctx, taxonID); err != nil {
		return err
	}
	return gw.DeleteTaxon(ctx, taxonID)
}
