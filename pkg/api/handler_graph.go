package api

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/ent"
	"github.com/rafiq-ai/rafiq/ent/timelineevent"
)

// graphVizSessionID is the fixed TimelineEvent session scope for the
// graph-viz live feed: there is exactly one graph, so one topic suffices
// (spec.md §6's per-session timeline concept, narrowed to a singleton).
const graphVizSessionID = "graph-viz"

// graphExportHandler handles GET /graph/viz/export: every node and
// relationship, for the visualisation frontend to lay out client-side.
func (s *Server) graphExportHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	nodes, err := s.graphStore.Query(ctx, `MATCH (n) RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props LIMIT 5000`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	edges, err := s.graphStore.Query(ctx, `MATCH (a)-[r]->(b) RETURN elementId(a) AS source, elementId(b) AS target, type(r) AS type, properties(r) AS props LIMIT 20000`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"nodes": nodes, "edges": edges})
}

// graphSchemaHandler handles GET /graph/viz/schema: the distinct node
// labels and relationship types currently in use.
func (s *Server) graphSchemaHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	labels, err := s.graphStore.Query(ctx, `CALL db.labels() YIELD label RETURN label`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	relTypes, err := s.graphStore.Query(ctx, `CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"labels": labels, "relationship_types": relTypes})
}

// graphStatsHandler handles GET /graph/viz/stats: node/edge counts per
// label, for the visualisation frontend's legend.
func (s *Server) graphStatsHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	nodeCounts, err := s.graphStore.Query(ctx, `MATCH (n) UNWIND labels(n) AS label RETURN label, count(*) AS count ORDER BY count DESC`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	edgeCount, err := s.graphStore.Query(ctx, `MATCH ()-[r]->() RETURN count(r) AS count`, nil)
	if err != nil {
		return mapServiceError(err)
	}
	total := 0
	if len(edgeCount) > 0 {
		if n, ok := edgeCount[0]["count"].(int64); ok {
			total = int(n)
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"node_counts_by_label": nodeCounts, "edge_count": total})
}

// graphImageHandler handles GET /graph/viz/image: a static PNG rendering
// of per-label node counts as a simple bar chart. No graphing/plotting
// library appears anywhere in the retrieval pack, so this draws directly
// with the standard library's image/png — see DESIGN.md.
func (s *Server) graphImageHandler(c *echo.Context) error {
	ctx := c.Request().Context()
	rows, err := s.graphStore.Query(ctx, `MATCH (n) UNWIND labels(n) AS label RETURN label, count(*) AS count ORDER BY count DESC LIMIT 20`, nil)
	if err != nil {
		return mapServiceError(err)
	}

	const width, height, barHeight = 640, 20, 16
	img := image.NewRGBA(image.Rect(0, 0, width, height*len(rows)+1))
	bg := color.RGBA{R: 245, G: 245, B: 245, A: 255}
	bar := color.RGBA{R: 46, G: 125, B: 167, A: 255}
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, bg)
		}
	}

	var maxCount int64
	for _, row := range rows {
		if n, ok := row["count"].(int64); ok && n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	for i, row := range rows {
		count, _ := row["count"].(int64)
		barWidth := int(float64(count) / float64(maxCount) * float64(width-10))
		top := i*height + 2
		for y := top; y < top+barHeight; y++ {
			for x := 0; x < barWidth; x++ {
				img.Set(x, y, bar)
			}
		}
	}

	c.Response().Header().Set(echo.HeaderContentType, "image/png")
	c.Response().WriteHeader(http.StatusOK)
	return png.Encode(c.Response(), img)
}

// graphBroadcaster fans out graph-mutation notifications to every
// connected /graph/viz/live websocket client, dropping slow readers
// rather than blocking the writer that triggered the update.
type graphBroadcaster struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func newGraphBroadcaster() *graphBroadcaster {
	return &graphBroadcaster{clients: map[chan string]struct{}{}}
}

func (b *graphBroadcaster) subscribe() chan string {
	ch := make(chan string, 8)
	b.mu.Lock()
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *graphBroadcaster) unsubscribe(ch chan string) {
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}

// Publish notifies every subscriber that the graph changed (e.g. a write
// tool ran during a chat turn). Never blocks: full client buffers are
// skipped.
func (b *graphBroadcaster) Publish(event string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.clients {
		select {
		case ch <- event:
		default:
		}
	}
}

// persistTimelineEvent appends event to the TimelineEvent log so a client
// that reconnects after a drop can replay what it missed (spec.md §6
// "graph-viz live push", grounded on the teacher's pkg/events catch-up
// mechanism). Best-effort: a failure here only degrades catch-up, it never
// blocks the live broadcast.
func (s *Server) persistTimelineEvent(ctx context.Context, eventType string) {
	last, err := s.dbClient.TimelineEvent.Query().
		Where(timelineevent.SessionIDEQ(graphVizSessionID)).
		Order(ent.Desc(timelineevent.FieldSeq)).
		First(ctx)
	seq := int64(1)
	if err == nil && last != nil {
		seq = last.Seq + 1
	}
	if _, err := s.dbClient.TimelineEvent.Create().
		SetID(uuid.NewString()).
		SetSessionID(graphVizSessionID).
		SetSeq(seq).
		SetEventType(eventType).
		Save(ctx); err != nil {
		slog.Warn("failed to persist graph-viz timeline event", "error", err)
	}
}

// graphLiveHandler handles GET /graph/viz/live: a websocket stream of
// "graph_changed" notifications, backing the visualisation frontend's
// live refresh. A client that dropped its connection can pass
// ?since_seq=N to first replay every TimelineEvent after N before
// switching to the live feed.
func (s *Server) graphLiveHandler(c *echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), nil)
	if err != nil {
		return mapServiceError(err)
	}
	defer conn.CloseNow()

	ctx := c.Request().Context()

	if sinceParam := c.QueryParam("since_seq"); sinceParam != "" {
		sinceSeq, convErr := strconv.ParseInt(sinceParam, 10, 64)
		if convErr == nil {
			missed, queryErr := s.dbClient.TimelineEvent.Query().
				Where(timelineevent.SessionIDEQ(graphVizSessionID), timelineevent.SeqGT(sinceSeq)).
				Order(ent.Asc(timelineevent.FieldSeq)).
				All(ctx)
			if queryErr == nil {
				for _, ev := range missed {
					writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
					werr := conn.Write(writeCtx, websocket.MessageText, []byte(ev.EventType))
					cancel()
					if werr != nil {
						return nil
					}
				}
			}
		}
	}

	ch := s.broadcaster.subscribe()
	defer s.broadcaster.unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			s.persistTimelineEvent(ctx, event)
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, []byte(event))
			cancel()
			if err != nil {
				return nil
			}
		}
	}
}
