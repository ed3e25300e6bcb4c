package conversations

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

// Store is the subset of the transcript-provider client the controller needs.
type Store interface {
	ListConversations(ctx context.Context) (elevenlabs.ConversationList, error)
	DeleteConversation(ctx context.Context, id string) error
}

// Controller owns the authoritative in-memory conversation list for a
// dashboard session. The list is only replaced by Load and shrunk by Delete.
type Controller struct {
	store Store

	mu      sync.Mutex
	list    []elevenlabs.Conversation
	cursor  string
	hasMore bool
}

// NewController creates a controller over the given store. The list is empty
// until the first Load.
func NewController(store Store) *Controller {
	return &Controller{store: store}
}

// Load fetches all conversations and replaces the list, sorted descending by
// start time. On any error the existing list is left untouched: the load
// fails open rather than partially populating.
func (c *Controller) Load(ctx context.Context) error {
	resp, err := c.store.ListConversations(ctx)
	if err != nil {
		slog.Error("conversation load failed", "error", err)
		return err
	}

	sorted := make([]elevenlabs.Conversation, len(resp.Conversations))
	copy(sorted, resp.Conversations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTimeUnixSecs > sorted[j].StartTimeUnixSecs
	})

	c.mu.Lock()
	c.list = sorted
	c.cursor = resp.NextCursor
	c.hasMore = resp.HasMore
	c.mu.Unlock()

	slog.Info("conversations loaded", "count", len(sorted))
	return nil
}

// Delete removes a conversation upstream, then drops the matching record from
// the list without re-fetching. On upstream failure the list is unchanged.
// Deleting an id that is not in the list is a no-op locally.
func (c *Controller) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteConversation(ctx, id); err != nil {
		slog.Error("conversation delete failed", "conversation_id", id, "error", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, conv := range c.list {
		if conv.ConversationID == id {
			c.list = append(c.list[:i], c.list[i+1:]...)
			break
		}
	}
	return nil
}

// All returns a copy of the authoritative list in its current order.
func (c *Controller) All() []elevenlabs.Conversation {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]elevenlabs.Conversation, len(c.list))
	copy(out, c.list)
	return out
}

// Visible applies the filter engine to the current list at the current time.
func (c *Controller) Visible(criteria Criteria) []elevenlabs.Conversation {
	return Filter(c.All(), criteria, time.Now())
}

// Cursor returns the pagination fields from the last successful load,
// passed through from the upstream provider.
func (c *Controller) Cursor() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor, c.hasMore
}

// Len reports the current list size (for health checks).
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}
