// Package wordvec assembles the word vector matrix for a vocabulary from an
// ensemble of pre-trained sources.
//
// Each source contributes one column block. Words a source does not cover
// are filled with that source's mean vector. Suppress then mean-centres the
// concatenated matrix and shrinks its dominant principal directions, which
// otherwise encode word frequency rather than meaning.
//
//	sources := []wordvec.Source{
//	    wordvec.FromStore(store, "crawl-300d-2M.vec.gz", 300),
//	    wordvec.FromStore(store, "paragram_300_sl999.txt", 300),
//	}
//	m, stats, err := wordvec.Load(ctx, sources, v)
//	m, err = wordvec.Suppress(m, wordvec.DefaultDominantComponents)
package wordvec
