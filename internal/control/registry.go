package control

// Registry is the typed front end to a Hardware. It caches the declared
// type and range of every element on first query so writes can be
// validated and discovery loops run only once.
type Registry struct {
	hw    Hardware
	infos map[ID]Info
}

// NewRegistry wraps a hardware backend
func NewRegistry(hw Hardware) *Registry {
	return &Registry{
		hw:    hw,
		infos: make(map[ID]Info),
	}
}

// Info returns the cached info for an element, querying the hardware on
// first use. A failed query means the element does not exist.
func (r *Registry) Info(id ID) (Info, error) {
	if info, ok := r.infos[id]; ok {
		return info, nil
	}
	info, err := r.hw.Info(id)
	if err != nil {
		return Info{}, opError("info", id, ErrCapabilityAbsent, err)
	}
	r.infos[id] = info
	return info, nil
}

// Has reports whether the element exists
func (r *Registry) Has(id ID) bool {
	_, err := r.Info(id)
	return err == nil
}

// Discover probes indices 0, 1, ... of a kind and returns how many exist
// before the first absent one, never more than limit.
func (r *Registry) Discover(kind Kind, limit int) int {
	n := 0
	for n < limit {
		if !r.Has(ID{Kind: kind, Index: n}) {
			break
		}
		n++
	}
	return n
}

// Read returns all values of an element
func (r *Registry) Read(id ID) ([]int, error) {
	if _, err := r.Info(id); err != nil {
		return nil, err
	}
	values, err := r.hw.Read(id)
	if err != nil {
		return nil, opError("read", id, ErrHardwareIO, err)
	}
	return values, nil
}

// Write stores all values of an element. Values outside the declared
// range are rejected before reaching the hardware.
func (r *Registry) Write(id ID, values []int) error {
	info, err := r.Info(id)
	if err != nil {
		return err
	}
	for _, v := range values {
		if !info.Contains(v) {
			return opError("write", id, ErrOutOfRange, nil)
		}
	}
	if err := r.hw.Write(id, values); err != nil {
		return opError("write", id, ErrHardwareIO, err)
	}
	return nil
}

// DBRange returns the element's gain range in hundredths of a dB
func (r *Registry) DBRange(id ID) (int, int, error) {
	lo, hi, err := r.hw.DBRange(id)
	if err != nil {
		return 0, 0, opError("dB range", id, ErrRangeUnavailable, err)
	}
	return lo, hi, nil
}

// ToDB converts a raw value to hundredths of a dB
func (r *Registry) ToDB(id ID, raw int) (int, error) {
	cdb, err := r.hw.ToDB(id, raw)
	if err != nil {
		return 0, opError("to dB", id, ErrRangeUnavailable, err)
	}
	return cdb, nil
}

// FromDB converts hundredths of a dB to a raw value
func (r *Registry) FromDB(id ID, cdb int, dir int) (int, error) {
	raw, err := r.hw.FromDB(id, cdb, dir)
	if err != nil {
		return 0, opError("from dB", id, ErrRangeUnavailable, err)
	}
	return raw, nil
}

// Close releases the hardware
func (r *Registry) Close() error {
	return r.hw.Close()
}
