package domain

// IdleState mirrors the browser idle detection states.
type IdleState string

const (
	IdleActive IdleState = "active"
	IdleIdle   IdleState = "idle"
	IdleLocked IdleState = "locked"
)

// BrowserEvent is a normalized browser-lifecycle signal delivered to the
// session recorder in arrival order. Each variant carries only the fields
// the browser populates for it.
type BrowserEvent interface {
	browserEvent()
}

type TabCreated struct {
	TabID   int
	URL     string
	Title   string
	Favicon string
}

// TabUpdated is emitted only once the tab has finished loading.
type TabUpdated struct {
	TabID   int
	URL     string
	Title   string
	Favicon string
}

type TabActivated struct {
	TabID int
}

type TabRemoved struct {
	TabID int
}

type IdleChanged struct {
	State IdleState
}

// AlarmTick fires on the periodic session-save alarm.
type AlarmTick struct{}

func (TabCreated) browserEvent()   {}
func (TabUpdated) browserEvent()   {}
func (TabActivated) browserEvent() {}
func (TabRemoved) browserEvent()   {}
func (IdleChanged) browserEvent()  {}
func (AlarmTick) browserEvent()    {}
