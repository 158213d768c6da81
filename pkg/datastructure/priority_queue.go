package datastructure

import (
	"errors"
)

var (
	// ErrDuplicateItem insert item yang sudah ada di heap
	ErrDuplicateItem = errors.New("item already exists in the heap")
	// ErrItemNotFound item tidak ada di heap
	ErrItemNotFound = errors.New("item not found in the heap")
	// ErrEmptyQueue peek / extract dari heap kosong
	ErrEmptyQueue = errors.New("heap is empty")
	// ErrInvalidRank decreaseKey dengan rank yang lebih besar dari rank sekarang
	ErrInvalidRank = errors.New("new rank is greater than current rank")
)

type PriorityQueueNode[T comparable] struct {
	Rank float64
	Item T
	seq  uint64
}

// MinHeap binary heap priorityqueue dengan index item -> posisi di array.
// heap 1-indexed, heap[0] tidak dipakai. pos[item] == k iff heap[k].Item == item.
type MinHeap[T comparable] struct {
	heap    []PriorityQueueNode[T]
	pos     map[T]int
	nextSeq uint64
}

func NewMinHeap[T comparable]() *MinHeap[T] {
	return NewMinHeapWithCapacity[T](0)
}

func NewMinHeapWithCapacity[T comparable](capacity int) *MinHeap[T] {
	h := &MinHeap[T]{
		heap: make([]PriorityQueueNode[T], 1, capacity+1),
		pos:  make(map[T]int, capacity),
	}
	return h
}

// parent get index dari parent
func parent(index int) int {
	return index / 2
}

// leftChild get index dari left child
func leftChild(index int) int {
	return 2 * index
}

// rightChild get index dari right child
func rightChild(index int) int {
	return 2*index + 1
}

// less urutkan berdasarkan rank, kalau rank sama yang di insert duluan lebih kecil.
func (h *MinHeap[T]) less(i, j int) bool {
	if h.heap[i].Rank != h.heap[j].Rank {
		return h.heap[i].Rank < h.heap[j].Rank
	}
	return h.heap[i].seq < h.heap[j].seq
}

// swap tukar dua node sekaligus update pos. satu-satunya tempat pos diubah selain insert & extract.
func (h *MinHeap[T]) swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]
	h.pos[h.heap[i].Item] = i
	h.pos[h.heap[j].Item] = j
}

// swim naikkan node selama lebih kecil dari parentnya. O(logN) tree height.
func (h *MinHeap[T]) swim(index int) {
	for index > 1 && h.less(index, parent(index)) {
		h.swap(index, parent(index))
		index = parent(index)
	}
}

// sink turunkan node ke child terkecil selama child lebih kecil. kalau kedua child sama, pilih left child. O(logN).
func (h *MinHeap[T]) sink(index int) {
	n := h.Size()
	for leftChild(index) <= n {
		smallest := leftChild(index)
		if right := rightChild(index); right <= n && h.less(right, smallest) {
			smallest = right
		}
		if !h.less(smallest, index) {
			break
		}
		h.swap(index, smallest)
		index = smallest
	}
}

// IsEmpty check apakah heap kosong
func (h *MinHeap[T]) IsEmpty() bool {
	return h.Size() == 0
}

// Size jumlah item di heap
func (h *MinHeap[T]) Size() int {
	return len(h.heap) - 1
}

// Contains O(1) lewat pos map
func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.pos[item]
	return ok
}

// GetMin mendapatkan node dengan rank minimum tanpa menghapusnya (index 1)
func (h *MinHeap[T]) GetMin() (PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyQueue
	}
	return h.heap[1], nil
}

// Insert item baru. O(logN)
func (h *MinHeap[T]) Insert(item T, rank float64) error {
	if h.Contains(item) {
		return ErrDuplicateItem
	}
	h.heap = append(h.heap, PriorityQueueNode[T]{Rank: rank, Item: item, seq: h.nextSeq})
	h.nextSeq++
	index := h.Size()
	h.pos[item] = index
	h.swim(index)
	return nil
}

// ExtractMin ambil node minimum & pop dari heap. node terakhir dipindah ke root lalu sink. O(logN)
func (h *MinHeap[T]) ExtractMin() (PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return PriorityQueueNode[T]{}, ErrEmptyQueue
	}
	last := h.Size()
	h.swap(1, last)
	root := h.heap[last]
	h.heap[last] = PriorityQueueNode[T]{}
	h.heap = h.heap[:last]
	delete(h.pos, root.Item)
	h.sink(1)
	return root, nil
}

// ChangePriority update rank item. sink kalau rank naik, swim kalau turun. O(logN)
func (h *MinHeap[T]) ChangePriority(item T, rank float64) error {
	index, ok := h.pos[item]
	if !ok {
		return ErrItemNotFound
	}
	old := h.heap[index].Rank
	h.heap[index].Rank = rank
	if rank > old {
		h.sink(index)
	} else {
		h.swim(index)
	}
	return nil
}

// DecreaseKey sama seperti ChangePriority tapi rank baru tidak boleh lebih besar.
func (h *MinHeap[T]) DecreaseKey(item T, rank float64) error {
	index, ok := h.pos[item]
	if !ok {
		return ErrItemNotFound
	}
	if rank > h.heap[index].Rank {
		return ErrInvalidRank
	}
	h.heap[index].Rank = rank
	h.swim(index)
	return nil
}

func (h *MinHeap[T]) GetItem(item T) (PriorityQueueNode[T], error) {
	index, ok := h.pos[item]
	if !ok {
		return PriorityQueueNode[T]{}, ErrItemNotFound
	}
	return h.heap[index], nil
}
