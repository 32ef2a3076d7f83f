package qnet

// dispatcher selects an idle device by round robin. The cursor is a plain
// integer index into the device slice; it survives across events and is
// only rewound by Reset.
type dispatcher struct {
	nextDevicePointer int
}

// pickDevice scans forward from nextDevicePointer for an idle device, wraps
// around to the start if none is found past it, and advances
// nextDevicePointer past whichever device it returns. Returns (-1, false)
// if every device is busy.
func (d *dispatcher) pickDevice(devices []*DeviceStatistics) (int, bool) {
	n := len(devices)
	for k := d.nextDevicePointer; k < n; k++ {
		if devices[k].IsIdle() {
			d.nextDevicePointer = (k + 1) % n
			return k, true
		}
	}
	for k := 0; k < d.nextDevicePointer; k++ {
		if devices[k].IsIdle() {
			d.nextDevicePointer = (k + 1) % n
			return k, true
		}
	}
	return -1, false
}
