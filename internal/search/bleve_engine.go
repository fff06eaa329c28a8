package search

import (
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/skim/internal/api"
	"github.com/pders01/skim/internal/debuglog"
)

type fieldBoost struct {
	name   string
	match  float64
	prefix float64
}

var boosts = []fieldBoost{
	{"title", 4.0, 3.5},
	{"tags", 2.0, 1.8},
	{"body", 1.0, 0.8},
}

// BleveEngine keeps an in-memory bleve index of the posts loaded under the
// current epoch.
type BleveEngine struct {
	idx   bleve.Index
	epoch uint64
	posts map[int]api.Post
	log   *debuglog.FieldLogger
}

func NewBleveEngine() (*BleveEngine, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, err
	}
	return &BleveEngine{
		idx:   idx,
		posts: make(map[int]api.Post),
		log:   debuglog.WithFields(map[string]any{"component": "find"}),
	}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.IncludeTermVectors = true

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = standard.Name

	body := bleve.NewTextFieldMapping()
	body.Analyzer = standard.Name
	body.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("tags", tags)
	dm.AddFieldMappingsAt("body", body)

	im.DefaultMapping = dm
	return im
}

func (b *BleveEngine) Sync(epoch uint64, posts []api.Post) error {
	if epoch != b.epoch {
		if err := b.reset(); err != nil {
			return err
		}
		b.epoch = epoch
	}

	batch := b.idx.NewBatch()
	var added []api.Post
	for _, p := range posts {
		if _, ok := b.posts[p.ID]; ok {
			continue
		}
		if err := batch.Index(docIDForPost(p.ID), map[string]any{
			"title": p.Title,
			"tags":  strings.Join(p.Tags, " "),
			"body":  p.Body,
		}); err != nil {
			return err
		}
		added = append(added, p)
	}
	if len(added) == 0 {
		return nil
	}

	// posts are recorded only once the batch is committed
	if err := b.idx.Batch(batch); err != nil {
		return err
	}
	for _, p := range added {
		b.posts[p.ID] = p
	}

	b.log.With("epoch", epoch, "added", len(added), "docs", len(b.posts)).Debugf("index synced")
	return nil
}

func (b *BleveEngine) reset() error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return err
	}
	_ = b.idx.Close()
	b.idx = idx
	b.posts = make(map[int]api.Post)
	return nil
}

func (b *BleveEngine) Find(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = len(b.posts)
	}

	terms := tokenize(query)
	var qs []bleveQuery.Query
	for _, tok := range terms {
		for _, f := range boosts {
			m := bleve.NewMatchQuery(tok)
			m.SetField(f.name)
			m.SetBoost(f.match)
			qs = append(qs, m)

			p := bleve.NewPrefixQuery(tok)
			p.SetField(f.name)
			p.SetBoost(f.prefix)
			qs = append(qs, p)
		}
	}
	if len(qs) == 0 || limit == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, ok := postIDFromDoc(h.ID)
		if !ok {
			continue
		}
		p, ok := b.posts[id]
		if !ok {
			continue
		}
		r := &Result{Post: p, Score: h.Score}
		// reuse the in-process scorer to say where the terms were found
		if scored := scorePost(p, terms); scored != nil {
			r.Matches = scored.Matches
		}
		out = append(out, r)
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	return int(n), err
}

func (b *BleveEngine) Epoch() uint64 { return b.epoch }

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForPost(id int) string { return "post:" + strconv.Itoa(id) }

func postIDFromDoc(doc string) (int, bool) {
	rest, ok := strings.CutPrefix(doc, "post:")
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	return id, err == nil
}
