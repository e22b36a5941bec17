package storage

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/issuegraph/core"
)

// RecordMUS is the MUS serializer for core.Record.
// Field order is part of the on-disk format: append new fields at the end only.
var RecordMUS = recordMUS{}

type recordMUS struct{}

func (recordMUS) Marshal(v core.Record, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Int.Marshal(int(v.Kind), bs[n:])
	n += varint.Int.Marshal(v.Number, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Body, bs[n:])
	n += varint.Int.Marshal(int(v.State), bs[n:])
	n += ord.String.Marshal(v.Repository, bs[n:])
	n += varint.Int64.Marshal(v.Author.ID, bs[n:])
	n += ord.String.Marshal(v.Author.Login, bs[n:])
	n += ord.String.Marshal(v.Author.Name, bs[n:])
	n += varint.Int.Marshal(len(v.Labels), bs[n:])
	for _, l := range v.Labels {
		n += ord.String.Marshal(l.Name, bs[n:])
		n += ord.String.Marshal(l.Color, bs[n:])
	}
	n += ord.String.Marshal(v.URL, bs[n:])
	n += varint.Int64.Marshal(v.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(v.Comments, bs[n:])
	n += varint.Int.Marshal(v.Reactions, bs[n:])
	n += varint.Int.Marshal(len(v.Assignees), bs[n:])
	for _, a := range v.Assignees {
		n += ord.String.Marshal(a, bs[n:])
	}
	n += ord.Bool.Marshal(v.Locked, bs[n:])
	n += ord.String.Marshal(v.Category, bs[n:])
	return
}

func (recordMUS) Size(v core.Record) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Int.Size(int(v.Kind))
	size += varint.Int.Size(v.Number)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Body)
	size += varint.Int.Size(int(v.State))
	size += ord.String.Size(v.Repository)
	size += varint.Int64.Size(v.Author.ID)
	size += ord.String.Size(v.Author.Login)
	size += ord.String.Size(v.Author.Name)
	size += varint.Int.Size(len(v.Labels))
	for _, l := range v.Labels {
		size += ord.String.Size(l.Name)
		size += ord.String.Size(l.Color)
	}
	size += ord.String.Size(v.URL)
	size += varint.Int64.Size(v.CreatedAt.UnixMicro())
	size += varint.Int64.Size(v.UpdatedAt.UnixMicro())
	size += varint.Int.Size(v.Comments)
	size += varint.Int.Size(v.Reactions)
	size += varint.Int.Size(len(v.Assignees))
	for _, a := range v.Assignees {
		size += ord.String.Size(a)
	}
	size += ord.Bool.Size(v.Locked)
	size += ord.String.Size(v.Category)
	return
}

func (recordMUS) Unmarshal(bs []byte) (v core.Record, n int, err error) {
	d := &musDecoder{bs: bs}
	v.Id = core.ID(d.uint64())
	v.Kind = core.RecordKind(d.int())
	v.Number = d.int()
	v.Title = d.string()
	v.Body = d.string()
	v.State = core.RecordState(d.int())
	v.Repository = d.string()
	v.Author.ID = d.int64()
	v.Author.Login = d.string()
	v.Author.Name = d.string()
	if count := d.length(); count > 0 {
		v.Labels = make([]core.Label, count)
		for i := range v.Labels {
			v.Labels[i].Name = d.string()
			v.Labels[i].Color = d.string()
		}
	}
	v.URL = d.string()
	v.CreatedAt = d.time()
	v.UpdatedAt = d.time()
	v.Comments = d.int()
	v.Reactions = d.int()
	if count := d.length(); count > 0 {
		v.Assignees = make([]string, count)
		for i := range v.Assignees {
			v.Assignees[i] = d.string()
		}
	}
	v.Locked = d.bool()
	v.Category = d.string()
	if d.err != nil {
		return core.Record{}, d.n, d.err
	}
	return v, d.n, nil
}

// musDecoder reads consecutive MUS fields and stops at the first error.
type musDecoder struct {
	bs  []byte
	n   int
	err error
}

func (d *musDecoder) uint64() uint64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) int64() int64 {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) int() int {
	if d.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) string() string {
	if d.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (d *musDecoder) bool() bool {
	if d.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

// length reads a slice length. Every element takes at least one byte, so a
// length larger than the remaining input means the data is truncated.
func (d *musDecoder) length() int {
	l := d.int()
	if d.err != nil {
		return 0
	}
	if l < 0 || l > len(d.bs)-d.n {
		d.err = ErrTruncatedData
		return 0
	}
	return l
}

func (d *musDecoder) time() time.Time {
	us := d.int64()
	if d.err != nil {
		return time.Time{}
	}
	return time.UnixMicro(us).UTC()
}
