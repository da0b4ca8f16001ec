package fwk

import (
	"fmt"
	"sort"
	"sync"
)

// System is the process-wide registry of data drivers.
var System = systemType{
	name:    "root",
	drivers: make([]Driver, 0, 2),
	drvmap:  make(map[string]Driver),
}

type systemType struct {
	name    string
	mu      sync.RWMutex
	drivers []Driver
	drvmap  map[string]Driver
}

func (sys *systemType) Name() string {
	return sys.name
}

// Drivers returns the registered drivers sorted by name.
func (sys *systemType) Drivers() []Driver {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	o := append([]Driver(nil), sys.drivers...)
	sort.Slice(o, func(i, j int) bool { return o[i].Name() < o[j].Name() })
	return o
}

func (sys *systemType) Register(drv Driver) {
	sys.mu.Lock()
	defer sys.mu.Unlock()
	d, dup := sys.drvmap[drv.Name()]
	if dup {
		panic(fmt.Errorf(
			"fwk: duplicate driver %q\nold=%#v\nnew=%#v",
			drv.Name(),
			d, drv,
		))
	}
	sys.drivers = append(sys.drivers, drv)
	sys.drvmap[drv.Name()] = drv
}

// Driver returns the named driver.
func (sys *systemType) Driver(name string) (Driver, error) {
	sys.mu.RLock()
	defer sys.mu.RUnlock()
	drv, ok := sys.drvmap[name]
	if !ok {
		names := make([]string, 0, len(sys.drivers))
		for _, d := range sys.drivers {
			names = append(names, d.Name())
		}
		sort.Strings(names)
		return nil, fmt.Errorf("fwk: no driver %q (registered: %v)", name, names)
	}
	return drv, nil
}
