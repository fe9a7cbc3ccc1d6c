package common

type Module string

const (
	ModuleTenx Module = "tenx"
)

func (m Module) String() string {
	return string(m)
}
