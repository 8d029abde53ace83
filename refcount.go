package gbm

// RefCount returns the number of live consumer references to a GEM
// handle. A handle with no table entry reads as zero; zero and absent
// are indistinguishable.
func (d *Driver) RefCount(handle uint32) uint32 {
	return d.refs[handle]
}

// Ref records one more consumer reference to the handle backing the
// given plane. A handle not yet in the table starts from zero.
func (d *Driver) Ref(bo *BufferObject, plane int) {
	d.refs[bo.Planes[plane].Handle]++
}

// Unref drops one consumer reference from the handle backing the given
// plane. The count floors at zero: unreferencing a handle that was
// never referenced leaves the table unchanged, and a count reaching
// zero removes the entry.
func (d *Driver) Unref(bo *BufferObject, plane int) {
	handle := bo.Planes[plane].Handle
	if n := d.refs[handle]; n > 1 {
		d.refs[handle] = n - 1
		return
	}
	delete(d.refs, handle)
}

// Acquire registers a consumer attaching to the buffer: every plane
// takes one reference on its backing handle. Planes aliasing the same
// handle each count, so the detach path stays symmetric.
func (d *Driver) Acquire(bo *BufferObject) {
	for p := range bo.Planes {
		d.Ref(bo, p)
	}
}

// Release registers a consumer detaching from the buffer and, once no
// plane handle holds a reference anymore, closes every distinct GEM
// handle the buffer owns.
func (d *Driver) Release(bo *BufferObject) error {
	for p := range bo.Planes {
		d.Unref(bo, p)
	}

	var live uint32
	for p := range bo.Planes {
		live += d.refs[bo.Planes[p].Handle]
	}
	if live != 0 {
		return nil
	}
	return d.ReleaseHandles(bo)
}
