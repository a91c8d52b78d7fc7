package tokfilter

// runeQueue 先进先出的字符队列。
type runeQueue struct {
	buf  []rune
	head int
}

func (q *runeQueue) pop() (rune, bool) {
	if q.head >= len(q.buf) {
		return 0, false
	}
	r := q.buf[q.head]
	q.head++
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}

	return r, true
}

// push 追加到队尾。
func (q *runeQueue) push(rs ...rune) {
	q.buf = append(q.buf, rs...)
}

// unread 插入到队首，保持 rs 内部顺序。
func (q *runeQueue) unread(rs ...rune) {
	if len(rs) == 0 {
		return
	}
	rest := q.buf[q.head:]
	buf := make([]rune, 0, len(rs)+len(rest))
	buf = append(buf, rs...)
	buf = append(buf, rest...)
	q.buf = buf
	q.head = 0
}

// optRune 可选的单个字符。
type optRune struct {
	r  rune
	ok bool
}
