package types

type NavbarData struct {
	IsAuthenticated bool
	Username        string
}

type NavbarDataSetter interface {
	SetNavbarData(data NavbarData)
}

type BasePageData struct {
	Title  string
	Notice string
	Error  string
	Navbar NavbarData
}

func (d *BasePageData) SetNavbarData(data NavbarData) {
	d.Navbar = data
}

type LoginPageData struct {
	BasePageData
	Username string
}

type RegisterPageData struct {
	BasePageData
	Username string
}

type DashboardPageData struct {
	BasePageData
	Documents []*Document
}

// DocumentFormPageData backs both the add and edit forms. Document is nil on
// add; the type lists drive the select input and the show/hide script for the
// back-side and date fields.
type DocumentFormPageData struct {
	BasePageData
	Document      *Document
	DocumentTypes []string
	BackSideTypes []string
	ExpiryTypes   []string
	Action        string
}

type DocumentViewPageData struct {
	BasePageData
	Document     *Document
	VisualCode   string // base64 PNG
	IsFrontImage bool
	IsBackImage  bool
	ShowBackSide bool
	ShowDates    bool
}

type ProfilePageData struct {
	BasePageData
	Username      string
	DocumentCount int
}

type ErrorPageData struct {
	BasePageData
	Status  int
	Message string
}
