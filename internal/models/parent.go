package models

// ParentKind identifies what a reply or comment-like hangs off.
type ParentKind uint8

const (
	ParentComment ParentKind = iota + 1
	ParentReply
)

func (k ParentKind) String() string {
	switch k {
	case ParentComment:
		return "comment"
	case ParentReply:
		return "reply"
	default:
		return "invalid"
	}
}

// ParentRef is either Comment(id) or Reply(id). The zero value is neither and is
// rejected everywhere a parent is required.
type ParentRef struct {
	kind ParentKind
	id   uint
}

// CommentParent refers to the comment with internal id.
func CommentParent(id uint) ParentRef { return ParentRef{kind: ParentComment, id: id} }

// ReplyParent refers to the reply with internal id.
func ReplyParent(id uint) ParentRef { return ParentRef{kind: ParentReply, id: id} }

func (p ParentRef) Kind() ParentKind { return p.kind }
func (p ParentRef) ID() uint         { return p.id }

// Valid reports whether p names exactly one existing-looking parent.
func (p ParentRef) Valid() bool {
	return (p.kind == ParentComment || p.kind == ParentReply) && p.id != 0
}

func (p ParentRef) columns() (comment, reply *uint) {
	id := p.id
	switch p.kind {
	case ParentComment:
		return &id, nil
	case ParentReply:
		return nil, &id
	}
	return nil, nil
}

// parentFromColumns rebuilds a ParentRef from the nullable column pair.
func parentFromColumns(comment, reply *uint) (ParentRef, error) {
	switch {
	case comment != nil && reply == nil:
		return CommentParent(*comment), nil
	case reply != nil && comment == nil:
		return ReplyParent(*reply), nil
	default:
		return ParentRef{}, ErrInvalidParent
	}
}
