package dex

import "math"

// readClassData decodes a class_data_item. Field and method indices are
// deltas from the previous entry of the same list; each list starts from 0.
func (l *linker) readClassData(off uint32) (*ClassData, error) {
	r, err := newReader(l.raw.buf, off, l.raw.bo)
	if err != nil {
		return nil, err
	}
	var sizes [4]uint32
	for i := range sizes {
		if sizes[i], err = r.uleb128(); err != nil {
			return nil, err
		}
	}
	// two bytes minimum per field, three per method
	if err := r.need(2*(int(sizes[0])+int(sizes[1])) + 3*(int(sizes[2])+int(sizes[3]))); err != nil {
		return nil, err
	}

	cd := &ClassData{}
	if cd.StaticFields, err = l.readEncodedFields(r, sizes[0]); err != nil {
		return nil, err
	}
	if cd.InstanceFields, err = l.readEncodedFields(r, sizes[1]); err != nil {
		return nil, err
	}
	if cd.DirectMethods, err = l.readEncodedMethods(r, sizes[2]); err != nil {
		return nil, err
	}
	if cd.VirtualMethods, err = l.readEncodedMethods(r, sizes[3]); err != nil {
		return nil, err
	}
	return cd, nil
}

func (l *linker) readEncodedFields(r *reader, n uint32) ([]EncodedField, error) {
	if n == 0 {
		return nil, nil
	}
	fields := make([]EncodedField, 0, n)
	var idx uint32
	for i := uint32(0); i < n; i++ {
		start := r.off
		diff, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		if idx, err = addIndexDiff(idx, diff, start); err != nil {
			return nil, err
		}
		flags, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		field, err := l.field(idx)
		if err != nil {
			return nil, err
		}
		fields = append(fields, EncodedField{
			Field:       field,
			AccessFlags: ParseAccessFlags(flags, FieldTarget),
		})
	}
	return fields, nil
}

func (l *linker) readEncodedMethods(r *reader, n uint32) ([]EncodedMethod, error) {
	if n == 0 {
		return nil, nil
	}
	methods := make([]EncodedMethod, 0, n)
	var idx uint32
	for i := uint32(0); i < n; i++ {
		start := r.off
		diff, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		if idx, err = addIndexDiff(idx, diff, start); err != nil {
			return nil, err
		}
		flags, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		codeOff, err := r.uleb128()
		if err != nil {
			return nil, err
		}
		method, err := l.method(idx)
		if err != nil {
			return nil, err
		}
		em := EncodedMethod{
			Method:      method,
			AccessFlags: ParseAccessFlags(flags, MethodTarget),
		}
		if codeOff != 0 {
			if em.Code, err = l.readCode(codeOff); err != nil {
				return nil, err
			}
		}
		methods = append(methods, em)
	}
	return methods, nil
}

// addIndexDiff applies a delta, rejecting sums that do not fit in 32 bits.
func addIndexDiff(idx, diff uint32, off int) (uint32, error) {
	sum := uint64(idx) + uint64(diff)
	if sum > math.MaxUint32 {
		return 0, formatErr(ErrBadIndex, off, "index %d + diff %d overflows", idx, diff)
	}
	return uint32(sum), nil
}
