// Package s3e computes sentence embeddings from pre-trained word vectors
// without a learned model.
//
// A sentence embedding has two parts. The first is the frequency-weighted
// mean of its word vectors. The second describes how the sentence's words
// spread over semantic groups of the vocabulary: per-group residuals against
// the group centroid form a matrix whose covariance is packed into a vector.
//
// # Quick Start
//
//	ctx := context.Background()
//	sentences, _ := corpus.Read(file)
//	store := blobstore.NewLocalStore("./word_embedding")
//	sources := []wordvec.Source{
//	    wordvec.FromStore(store, "crawl-300d-2M.vec", 300),
//	    wordvec.FromStore(store, "paragram_300_sl999.txt.gz", 300),
//	}
//	freq, _ := os.Open("enwiki_vocab_min200.txt")
//	emb, model, _ := s3e.Embed(ctx, sentences, sources, freq,
//	    s3e.WithClusters(10), s3e.WithSeed(42))
//	sim, _ := emb.Cosine(0, 1)
//
// # Pipeline
//
// Build runs, in order: vocabulary construction, ensemble vector loading
// with mean backfill, dominant component suppression, SIF word weighting and
// weighted k-means. Model.Embed then encodes every sentence concurrently and
// removes the corpus-wide dominant directions.
//
// Configuration errors surface before the stage that depends on them: the
// cluster count is checked against the vocabulary before any vector file is
// read, the post-processing component count before any sentence is encoded.
package s3e
