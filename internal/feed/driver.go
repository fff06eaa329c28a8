package feed

import tea "github.com/charmbracelet/bubbletea"

// AutoLoad is the infinite-scroll step, run after every state change. The
// trigger is enabled only while infinite scrolling is on, more results
// exist, nothing is loading and the last fetch did not fail. A rising edge
// then issues exactly one LoadMore.
func (c *Controller) AutoLoad(t *Trigger, infinite bool, vp Viewport) tea.Cmd {
	t.SetEnabled(infinite && c.CanLoadMore() && c.Err() == "")
	if !t.Enabled() {
		return nil
	}

	t.Attach(Sentinel{Top: len(c.page.Items), Height: 1})
	if !t.Observe(vp) {
		return nil
	}

	c.log.With("offset", c.page.NextOffset).Debugf("sentinel visible, loading more")
	return c.LoadMore()
}
