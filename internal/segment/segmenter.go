package segment

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"go.uber.org/zap"

	"github.com/Faultbox/toothseg/internal/mesh"
)

// Segmenter runs the segmentation stages on one mesh.
type Segmenter struct {
	Mesh   *mesh.Mesh
	Params Params
	State  State

	log *zap.Logger
}

// New creates a Segmenter. A nil logger discards output.
func New(m *mesh.Mesh, params Params, log *zap.Logger) (*Segmenter, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Segmenter{Mesh: m, Params: params, log: log}, nil
}

// fifo is the breadth-first work queue shared by flood fills and walks.
type fifo struct {
	q *linkedlistqueue.Queue
}

func newFIFO(seed int) fifo {
	q := linkedlistqueue.New()
	q.Enqueue(seed)
	return fifo{q: q}
}

func (f fifo) push(v int) {
	f.q.Enqueue(v)
}

func (f fifo) pop() (int, bool) {
	v, ok := f.q.Dequeue()
	if !ok {
		return 0, false
	}
	return v.(int), true
}
