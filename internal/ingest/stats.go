package ingest

// Stats accumulates the per-run record counts the ingest coordinator
// creates, grounded on lib/proteomics/services/digest_and_ingest.py's
// `self.stats` defaultdict(int), which is logged once at the end of a run
// under "Statistics on records created" (SPEC_FULL.md §4.9).
type Stats struct {
	Taxa                  int
	Proteins              int
	TaxonProteins         int
	ProteinDigests        int
	Peptides              int
	ProteinDigestPeptides int
	TaxonDigestPeptides   int
}

// Add accumulates another file's stats into s, e.g. summing per-file
// results from internal/ingest/driver.Run into one run-wide total.
func (s *Stats) Add(o Stats) {
	s.Taxa += o.Taxa
	s.Proteins += o.Proteins
	s.TaxonProteins += o.TaxonProteins
	s.ProteinDigests += o.ProteinDigests
	s.Peptides += o.Peptides
	s.ProteinDigestPeptides += o.ProteinDigestPeptides
	s.TaxonDigestPeptides += o.TaxonDigestPeptides
}
