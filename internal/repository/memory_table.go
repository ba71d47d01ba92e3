package repository

import "sync"

// memTable はエンティティ種別ごとのインメモリコレクション。
// IDは1から単調増加で採番し、削除後も再利用しない。
// 読み出しは常にコピーを返すため、呼び出し側の変更は保存状態に影響しない。
type memTable[T any] struct {
	mu     sync.RWMutex
	nextID int64
	order  []int64
	rows   map[int64]*T
	clone  func(*T) *T
	setID  func(*T, int64)
}

func newMemTable[T any](clone func(*T) *T, setID func(*T, int64)) *memTable[T] {
	return &memTable[T]{
		nextID: 1,
		rows:   make(map[int64]*T),
		clone:  clone,
		setID:  setID,
	}
}

// insert は次のIDを採番し、initで既定値を設定してから保存する。
// 保存した値のコピーを返す。
func (t *memTable[T]) insert(row *T, init func(*T)) *T {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++

	stored := t.clone(row)
	t.setID(stored, id)
	if init != nil {
		init(stored)
	}
	t.rows[id] = stored
	t.order = append(t.order, id)
	return t.clone(stored)
}

func (t *memTable[T]) get(id int64) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil
	}
	return t.clone(row)
}

// find は挿入順で最初に条件を満たす行のコピーを返す。
func (t *memTable[T]) find(pred func(*T) bool) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if row := t.rows[id]; pred(row) {
			return t.clone(row)
		}
	}
	return nil
}

// listWhere は挿入順のスナップショットを返す。predがnilの場合は全件。
func (t *memTable[T]) listWhere(pred func(*T) bool) []*T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if pred == nil || pred(row) {
			out = append(out, t.clone(row))
		}
	}
	return out
}

// update は保存中の行をmutateで書き換え、結果のコピーを返す。
func (t *memTable[T]) update(id int64, mutate func(*T)) *T {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return nil
	}
	mutate(row)
	return t.clone(row)
}

func (t *memTable[T]) delete(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// deleteWhere は条件を満たす行を全て削除し、削除件数を返す。
func (t *memTable[T]) deleteWhere(pred func(*T) bool) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.order[:0]
	removed := 0
	for _, id := range t.order {
		if pred(t.rows[id]) {
			delete(t.rows, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	t.order = kept
	return removed
}
