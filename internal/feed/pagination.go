package feed

import "github.com/pders01/skim/internal/api"

// PaginationState is the cursor bookkeeping for one epoch.
//
// After every completed fetch HasMore == (NextOffset < Total), and
// NextOffset only moves after a successful merge.
type PaginationState struct {
	Items      []api.Post
	NextOffset int
	Total      int
	HasMore    bool
	Loading    bool
	Err        string
}

func newPagination() PaginationState {
	return PaginationState{HasMore: true}
}

func (p *PaginationState) reset() {
	*p = newPagination()
}

func (p *PaginationState) begin() {
	p.Loading = true
	p.Err = ""
}

// merge applies a page fetched at offset. Offset zero replaces the list.
func (p *PaginationState) merge(offset, limit int, result *api.PageResult) {
	if offset == 0 {
		p.Items = append([]api.Post(nil), result.Posts...)
	} else {
		p.Items = append(p.Items, result.Posts...)
	}
	p.Total = result.Total
	p.NextOffset = offset + limit
	p.HasMore = p.NextOffset < p.Total
	p.Loading = false
	p.Err = ""
}

func (p *PaginationState) fail(err error) {
	p.Err = err.Error()
	p.Loading = false
}

// CanLoadMore is the load-more guard.
func (p PaginationState) CanLoadMore() bool {
	return p.HasMore && !p.Loading
}
