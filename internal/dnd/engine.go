// Package dnd is the drag and drop state machine of the build editor. It
// consumes hit-test results from the input layer (which container and which
// sibling index the pointer is over) and turns a completed gesture into a
// single build document mutation.
package dnd

import (
	"errors"
	"log/slog"

	"github.com/meur/buildforge/internal/build"
	"github.com/meur/buildforge/internal/models"
)

// PickerContainer is the container id of the catalog item picker
const PickerContainer = "item-picker"

// EndOfList as an over index means past the last item
const EndOfList = -1

// State is the engine phase
type State int

const (
	Idle State = iota
	Dragging
	DropPreview
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case DropPreview:
		return "drop_preview"
	default:
		return "idle"
	}
}

// Op is the mutation a finished gesture applied
type Op int

const (
	OpNone    Op = iota // committed without change
	OpCancel            // gesture abandoned, nothing applied
	OpAdd               // picker item placed into a block
	OpMove              // build item moved to another block
	OpReorder           // build item moved inside its block
	OpRemove            // build item dropped back on the picker
)

func (o Op) String() string {
	switch o {
	case OpCancel:
		return "cancel"
	case OpAdd:
		return "add"
	case OpMove:
		return "move"
	case OpReorder:
		return "reorder"
	case OpRemove:
		return "remove"
	default:
		return "none"
	}
}

// Document is the part of the build document the engine drives
type Document interface {
	ItemCount(blockID string) (int, bool)
	ItemIndex(blockID, buildItemID string) (int, bool)
	InsertItem(blockID, catalogItemID string, index int) (models.BuildItem, error)
	MoveItem(fromBlockID, toBlockID, buildItemID string, toIndex int) error
	ReorderWithinBlock(blockID, buildItemID string, toIndex int) error
	RemoveItem(blockID, buildItemID string) error
}

// Source identifies what is being dragged. For a placed build item ID is the
// build item id and Container its block. For a catalog entry ID is the
// catalog item id and Container is PickerContainer.
type Source struct {
	ID        string
	Container string
}

// FromPicker reports whether the drag started in the item picker
func (s Source) FromPicker() bool {
	return s.Container == PickerContainer
}

// Status is the observable engine state, used to render the drag ghost
type Status struct {
	State       State  `json:"state"`
	ActiveID    string `json:"activeId,omitempty"`
	Origin      string `json:"origin,omitempty"`
	OriginIndex int    `json:"originIndex"` // where a ghost reverts to on cancel
	Over        string `json:"over,omitempty"`
	OverIndex   int    `json:"overIndex"`
}

// Result reports what a finished gesture did
type Result struct {
	Op   Op
	Item models.BuildItem // the added build item for OpAdd
	Err  error            // why a drop turned into a cancel, if it did
}

// Engine tracks at most one drag at a time
type Engine struct {
	doc    Document
	log    *slog.Logger
	onPick func()

	state     State
	active    Source
	origin    int // index of the build item in its block when the drag began
	over      string
	overIndex int
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// OnPickerDragStart registers a hook run when a drag starts in the item
// picker. The editor uses it to close the item selection overlay.
func OnPickerDragStart(fn func()) Option {
	return func(e *Engine) {
		e.onPick = fn
	}
}

// NewEngine creates an idle engine over doc
func NewEngine(doc Document, opts ...Option) *Engine {
	e := &Engine{
		doc: doc,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Status returns the current state
func (e *Engine) Status() Status {
	return Status{
		State:       e.state,
		ActiveID:    e.active.ID,
		Origin:      e.active.Container,
		OriginIndex: e.origin,
		Over:        e.over,
		OverIndex:   e.overIndex,
	}
}

// Start begins a drag. It returns false and changes nothing when a drag is
// already in progress, the source does not exist, or a picker source is not
// a catalog item id.
func (e *Engine) Start(src Source) bool {
	if e.state != Idle {
		e.log.Debug("Ignoring drag start during active drag", "active_id", e.active.ID, "requested_id", src.ID)
		return false
	}
	if src.ID == "" {
		return false
	}

	origin := 0
	if src.FromPicker() && !build.IsCatalogID(src.ID) {
		e.log.Debug("Ignoring picker drag of non catalog id", "item_id", src.ID)
		return false
	}
	if !src.FromPicker() {
		idx, ok := e.doc.ItemIndex(src.Container, src.ID)
		if !ok {
			e.log.Debug("Ignoring drag start on unknown build item", "block_id", src.Container, "item_id", src.ID)
			return false
		}
		origin = idx
	}

	e.state = Dragging
	e.active = src
	e.origin = origin
	e.over = ""
	e.overIndex = 0

	if src.FromPicker() && e.onPick != nil {
		e.onPick()
	}
	return true
}

// Over records the container and sibling index the pointer is over, as
// reported by the input layer. EndOfList, or any index past the last item,
// targets the end of the container. An unknown container is treated as
// leaving all containers.
func (e *Engine) Over(container string, overIndex int) {
	if e.state == Idle {
		return
	}

	if container == PickerContainer {
		e.state = DropPreview
		e.over = container
		e.overIndex = 0
		return
	}

	n, ok := e.doc.ItemCount(container)
	if !ok {
		e.Leave()
		return
	}
	if overIndex < 0 || overIndex > n {
		overIndex = n
	}

	e.state = DropPreview
	e.over = container
	e.overIndex = overIndex
}

// Leave records that the pointer is outside every container
func (e *Engine) Leave() {
	if e.state == Idle {
		return
	}
	e.state = Dragging
	e.over = ""
	e.overIndex = 0
}

// Cancel abandons the drag without touching the document
func (e *Engine) Cancel() Result {
	if e.state == Idle {
		return Result{Op: OpNone}
	}
	e.reset()
	return Result{Op: OpCancel}
}

// Drop releases the dragged entity. A release outside any container cancels.
// Otherwise exactly one mutation is applied; if it fails because its block or
// item has gone, the drop becomes a cancel and the document is unchanged.
func (e *Engine) Drop() Result {
	switch e.state {
	case Idle:
		return Result{Op: OpNone}
	case Dragging:
		e.reset()
		return Result{Op: OpCancel}
	}

	src, over, idx := e.active, e.over, e.overIndex
	e.reset()

	res := e.commit(src, over, idx)
	if res.Err != nil {
		e.log.Debug("Drop cancelled", "active_id", src.ID, "over", over, "error", res.Err)
	}
	return res
}

func (e *Engine) commit(src Source, over string, idx int) Result {
	switch {
	case src.FromPicker() && over == PickerContainer:
		return Result{Op: OpNone}

	case src.FromPicker():
		it, err := e.doc.InsertItem(over, src.ID, idx)
		if err != nil {
			return cancelled(err)
		}
		return Result{Op: OpAdd, Item: it}

	case over == PickerContainer:
		if _, ok := e.doc.ItemIndex(src.Container, src.ID); !ok {
			return cancelled(errSourceGone)
		}
		if err := e.doc.RemoveItem(src.Container, src.ID); err != nil {
			return cancelled(err)
		}
		return Result{Op: OpRemove}

	case over == src.Container:
		cur, ok := e.doc.ItemIndex(src.Container, src.ID)
		if !ok {
			return cancelled(errSourceGone)
		}
		n, _ := e.doc.ItemCount(over)
		if idx >= n {
			idx = n - 1
		}
		if idx == cur {
			return Result{Op: OpNone}
		}
		if err := e.doc.ReorderWithinBlock(over, src.ID, idx); err != nil {
			return cancelled(err)
		}
		return Result{Op: OpReorder}

	default:
		if err := e.doc.MoveItem(src.Container, over, src.ID, idx); err != nil {
			return cancelled(err)
		}
		return Result{Op: OpMove}
	}
}

var errSourceGone = errors.New("dragged build item no longer exists")

func cancelled(err error) Result {
	return Result{Op: OpCancel, Err: err}
}

func (e *Engine) reset() {
	e.state = Idle
	e.active = Source{}
	e.origin = 0
	e.over = ""
	e.overIndex = 0
}
