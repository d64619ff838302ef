package machine

import "github.com/cab202/avremu/ccp"

// ccpReg adapts ccp.KeyRegister to the ioBlock shape every register
// window in this package uses, since KeyRegister itself is a single
// byte with no offset to dispatch on.
type ccpReg struct {
	key ccp.KeyRegister
}

func newCCPReg(unlocker ccp.Unlocker) *ccpReg {
	r := &ccpReg{}
	r.key.Unlocker = unlocker
	return r
}

func (r *ccpReg) Read(reg uint8) uint8 { return r.key.Read() }

func (r *ccpReg) Write(reg uint8, val uint8) {
	if reg == 0 {
		r.key.Write(val)
	}
}
