package ledger

// Target selects the clients SetClientInfo applies to. The only
// implementations are returned by All, MatchInfo and OnePerson.
type Target interface {
	// Matches reports whether a client with the given name and info is selected.
	Matches(name, info string) bool

	isTarget()
}

// AllTarget selects every client.
type AllTarget struct{}

// MatchInfoTarget selects every client whose info equals Info exactly.
type MatchInfoTarget struct {
	Info string
}

// OnePersonTarget selects the single client called Name.
type OnePersonTarget struct {
	Name string
}

func All() Target                  { return AllTarget{} }
func MatchInfo(info string) Target { return MatchInfoTarget{Info: info} }
func OnePerson(name string) Target { return OnePersonTarget{Name: name} }

func (AllTarget) Matches(string, string) bool { return true }

func (t MatchInfoTarget) Matches(_, info string) bool { return info == t.Info }

func (t OnePersonTarget) Matches(name, _ string) bool { return name == t.Name }

func (AllTarget) isTarget()       {}
func (MatchInfoTarget) isTarget() {}
func (OnePersonTarget) isTarget() {}
