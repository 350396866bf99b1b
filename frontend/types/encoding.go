package types

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cottand/typealg/frontend/ast"
	"github.com/cottand/typealg/frontend/ilerr"
	"github.com/pkg/errors"
)

// Encoding tags. A type is encoded as a prefix tree: one tag per node, followed by the
// encodings of its children. Markers are encoded as the ASCII digits '0' to '9'.
//
//	TagFunction <arg>... TagMany <tail> <return>
//	TagObject <variance> <4-byte big-endian program id>
//	TagAssign <marker digit> <inner>
const (
	TagArray    byte = 0
	TagMapping  byte = 1
	TagMultiset byte = 2
	TagObject   byte = 3
	TagFunction byte = 4
	TagProgram  byte = 5
	TagString   byte = 6
	TagFloat    byte = 7
	TagInt      byte = 8
	TagVoid     byte = 16
	TagMany     byte = 17
	TagNot      byte = 18
	TagAnd      byte = 19
	TagOr       byte = 20
	TagAssign   byte = 21
	TagUnknown  byte = 22
	TagMixed    byte = 23
	TagMarker0  byte = '0'
)

// objectPayload is the variance byte plus the program id
const objectPayload = 1 + 4

// maxNesting is how deeply encoded nodes may nest
const maxNesting = 100_000

// ErrMalformed is returned when an encoded type is not well-formed.
// It means the encoding was corrupted before it reached us.
var ErrMalformed = errors.New("malformed type encoding")

var basicTags = map[Kind]byte{
	KindInt:     TagInt,
	KindFloat:   TagFloat,
	KindString:  TagString,
	KindProgram: TagProgram,
	KindVoid:    TagVoid,
	KindMixed:   TagMixed,
	KindUnknown: TagUnknown,
}

func isMarkerTag(tag byte) bool {
	return tag >= TagMarker0 && tag < TagMarker0+MaxMarkers
}

// Encode returns the interchange encoding of t
func Encode(t Type) []byte {
	return appendEncoding(make([]byte, 0, 16), t)
}

func appendEncoding(buf []byte, t Type) []byte {
	switch t := t.(type) {
	case basicType:
		return append(buf, basicTags[t.kind])
	case MarkerRef:
		return append(buf, TagMarker0+byte(t.marker))
	case *ArrayType:
		return appendEncoding(append(buf, TagArray), t.elem)
	case *MultisetType:
		return appendEncoding(append(buf, TagMultiset), t.elem)
	case *NotType:
		return appendEncoding(append(buf, TagNot), t.negated)
	case *MappingType:
		buf = appendEncoding(append(buf, TagMapping), t.key)
		return appendEncoding(buf, t.value)
	case *OrType:
		buf = appendEncoding(append(buf, TagOr), t.lhs)
		return appendEncoding(buf, t.rhs)
	case *AndType:
		buf = appendEncoding(append(buf, TagAnd), t.lhs)
		return appendEncoding(buf, t.rhs)
	case *AssignType:
		buf = append(buf, TagAssign, TagMarker0+byte(t.marker))
		return appendEncoding(buf, t.inner)
	case *ObjectType:
		buf = append(buf, TagObject, byte(t.variance))
		return binary.BigEndian.AppendUint32(buf, uint32(t.program))
	case *FunctionType:
		buf = append(buf, TagFunction)
		for _, arg := range t.args {
			buf = appendEncoding(buf, arg)
		}
		buf = appendEncoding(append(buf, TagMany), t.tail)
		return appendEncoding(buf, t.ret)
	}
	panic(errors.Errorf("cannot encode type %T", t))
}

// Length returns how many bytes the encoded node starting at pos occupies
func Length(buf []byte, pos int) (int, error) {
	end, err := skip(buf, pos, 0)
	if err != nil {
		return 0, err
	}
	return end - pos, nil
}

// skip returns the position right after the node starting at pos
func skip(buf []byte, pos, depth int) (int, error) {
	if depth > maxNesting {
		return 0, tooDeep()
	}
	if pos < 0 || pos >= len(buf) {
		return 0, errors.Wrapf(ErrMalformed, "node expected at %d but encoding has %d bytes", pos, len(buf))
	}
	tag := buf[pos]
	pos++
	if isMarkerTag(tag) {
		return pos, nil
	}
	var err error
	switch tag {
	case TagInt, TagFloat, TagString, TagProgram, TagVoid, TagMixed, TagUnknown:
		return pos, nil
	case TagObject:
		if pos+objectPayload > len(buf) {
			return 0, errors.Wrapf(ErrMalformed, "truncated object payload at %d", pos)
		}
		if variance := Variance(buf[pos]); variance > Is {
			return 0, errors.Wrapf(ErrMalformed, "unknown object variance %d at %d", variance, pos)
		}
		return pos + objectPayload, nil
	case TagAssign:
		if pos >= len(buf) || !isMarkerTag(buf[pos]) {
			return 0, errors.Wrapf(ErrMalformed, "assignment without marker at %d", pos)
		}
		return skip(buf, pos+1, depth+1)
	case TagArray, TagMultiset, TagNot:
		return skip(buf, pos, depth+1)
	case TagMapping, TagOr, TagAnd:
		if pos, err = skip(buf, pos, depth+1); err != nil {
			return 0, err
		}
		return skip(buf, pos, depth+1)
	case TagFunction:
		for {
			if pos >= len(buf) {
				return 0, errors.Wrapf(ErrMalformed, "function without %d sentinel", TagMany)
			}
			if buf[pos] == TagMany {
				break
			}
			if pos, err = skip(buf, pos, depth+1); err != nil {
				return 0, err
			}
		}
		if pos, err = skip(buf, pos+1, depth+1); err != nil {
			return 0, err
		}
		return skip(buf, pos, depth+1)
	}
	return 0, errors.Wrapf(ErrMalformed, "unknown tag %d at %d", tag, pos-1)
}

// Decode is the inverse of Encode. Trailing bytes after the first node are an error.
func Decode(buf []byte) (Type, error) {
	t, end, err := decode(buf, 0, 0)
	if err != nil {
		return nil, err
	}
	if end != len(buf) {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after type", len(buf)-end)
	}
	return t, nil
}

// DecodeHex decodes the hex representation of an encoding, as printed by the CLI
func DecodeHex(s string) (Type, error) {
	buf, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return Decode(buf)
}

func decode(buf []byte, pos, depth int) (Type, int, error) {
	if depth > maxNesting {
		return nil, 0, tooDeep()
	}
	if pos < 0 || pos >= len(buf) {
		return nil, 0, errors.Wrapf(ErrMalformed, "node expected at %d but encoding has %d bytes", pos, len(buf))
	}
	tag := buf[pos]
	pos++
	if isMarkerTag(tag) {
		return NewMarker(Marker(tag - TagMarker0)), pos, nil
	}
	switch tag {
	case TagInt:
		return Int, pos, nil
	case TagFloat:
		return Float, pos, nil
	case TagString:
		return String, pos, nil
	case TagProgram:
		return Program, pos, nil
	case TagVoid:
		return Void, pos, nil
	case TagMixed:
		return Mixed, pos, nil
	case TagUnknown:
		return Unknown, pos, nil
	case TagObject:
		if pos+objectPayload > len(buf) {
			return nil, 0, errors.Wrapf(ErrMalformed, "truncated object payload at %d", pos)
		}
		variance := Variance(buf[pos])
		if variance > Is {
			return nil, 0, errors.Wrapf(ErrMalformed, "unknown object variance %d at %d", variance, pos)
		}
		return NewObject(variance, ProgramID(binary.BigEndian.Uint32(buf[pos+1:]))), pos + objectPayload, nil
	case TagAssign:
		if pos >= len(buf) || !isMarkerTag(buf[pos]) {
			return nil, 0, errors.Wrapf(ErrMalformed, "assignment without marker at %d", pos)
		}
		inner, end, err := decode(buf, pos+1, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return NewAssign(Marker(buf[pos]-TagMarker0), inner), end, nil
	case TagArray, TagMultiset, TagNot:
		child, end, err := decode(buf, pos, depth+1)
		if err != nil {
			return nil, 0, err
		}
		switch tag {
		case TagArray:
			return NewArray(child), end, nil
		case TagMultiset:
			return NewMultiset(child), end, nil
		}
		return NewNot(child), end, nil
	case TagMapping, TagOr, TagAnd:
		lhs, next, err := decode(buf, pos, depth+1)
		if err != nil {
			return nil, 0, err
		}
		rhs, end, err := decode(buf, next, depth+1)
		if err != nil {
			return nil, 0, err
		}
		switch tag {
		case TagMapping:
			return NewMapping(lhs, rhs), end, nil
		case TagOr:
			return NewOr(lhs, rhs), end, nil
		}
		return NewAnd(lhs, rhs), end, nil
	case TagFunction:
		var args []Type
		for {
			if pos >= len(buf) {
				return nil, 0, errors.Wrapf(ErrMalformed, "function without %d sentinel", TagMany)
			}
			if buf[pos] == TagMany {
				break
			}
			arg, next, err := decode(buf, pos, depth+1)
			if err != nil {
				return nil, 0, err
			}
			args = append(args, arg)
			pos = next
		}
		tail, next, err := decode(buf, pos+1, depth+1)
		if err != nil {
			return nil, 0, err
		}
		ret, end, err := decode(buf, next, depth+1)
		if err != nil {
			return nil, 0, err
		}
		return NewFunction(args, tail, ret), end, nil
	}
	return nil, 0, errors.Wrapf(ErrMalformed, "unknown tag %d at %d", tag, pos-1)
}

func tooDeep() error {
	return ilerr.New(ilerr.NewTypeTooComplex{Positioner: ast.Range{}, Limit: maxNesting, What: "type nesting"})
}

// MustLength is Length for encodings that are known to be well-formed
func MustLength(buf []byte, pos int) int {
	n, err := Length(buf, pos)
	if err != nil {
		panic(err)
	}
	return n
}
