package store

import "github.com/tinylib/msgp/msgp"

// MarshalMsg appends the msgp encoding of s to b. Hand-written rather than
// msgp-generated since Snapshot's shape is small and stable; it follows the
// same map-of-4-fields convention msgp's own generator would produce.
func (s *Snapshot) MarshalMsg(b []byte) ([]byte, error) {
	o := msgp.AppendMapHeader(b, 4)
	o = msgp.AppendString(o, "run_id")
	o = msgp.AppendString(o, s.RunID)

	o = msgp.AppendString(o, "assignments")
	o = msgp.AppendMapHeader(o, uint32(len(s.BlockAssignments)))
	for k, v := range s.BlockAssignments {
		o = msgp.AppendString(o, k)
		o = msgp.AppendString(o, v)
	}

	o = msgp.AppendString(o, "voyage_blocks")
	o = msgp.AppendMapHeader(o, uint32(len(s.VoyageBlocks)))
	for k, v := range s.VoyageBlocks {
		o = msgp.AppendString(o, k)
		o = msgp.AppendArrayHeader(o, uint32(len(v)))
		for _, id := range v {
			o = msgp.AppendString(o, id)
		}
	}

	o = msgp.AppendString(o, "last_end")
	o = msgp.AppendMapHeader(o, uint32(len(s.LastEnd)))
	for k, v := range s.LastEnd {
		o = msgp.AppendString(o, k)
		o = msgp.AppendInt64(o, v)
	}
	return o, nil
}

// UnmarshalMsg decodes b into s, returning any unconsumed trailing bytes.
func (s *Snapshot) UnmarshalMsg(b []byte) ([]byte, error) {
	fieldCount, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < fieldCount; i++ {
		var field string
		field, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, err
		}
		switch field {
		case "run_id":
			s.RunID, b, err = msgp.ReadStringBytes(b)
		case "assignments":
			s.BlockAssignments, b, err = readStringMap(b)
		case "voyage_blocks":
			s.VoyageBlocks, b, err = readStringSliceMap(b)
		case "last_end":
			s.LastEnd, b, err = readInt64Map(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func readStringMap(b []byte) (map[string]string, []byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	out := make(map[string]string, n)
	for i := uint32(0); i < n; i++ {
		var k, v string
		k, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		v, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		out[k] = v
	}
	return out, b, nil
}

func readStringSliceMap(b []byte) (map[string][]string, []byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	out := make(map[string][]string, n)
	for i := uint32(0); i < n; i++ {
		var k string
		k, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		var cnt uint32
		cnt, b, err = msgp.ReadArrayHeaderBytes(b)
		if err != nil {
			return nil, b, err
		}
		vals := make([]string, cnt)
		for j := uint32(0); j < cnt; j++ {
			vals[j], b, err = msgp.ReadStringBytes(b)
			if err != nil {
				return nil, b, err
			}
		}
		out[k] = vals
	}
	return out, b, nil
}

func readInt64Map(b []byte) (map[string]int64, []byte, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, b, err
	}
	out := make(map[string]int64, n)
	for i := uint32(0); i < n; i++ {
		var k string
		k, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, b, err
		}
		var v int64
		v, b, err = msgp.ReadInt64Bytes(b)
		if err != nil {
			return nil, b, err
		}
		out[k] = v
	}
	return out, b, nil
}
