package profile

import (
	"github.com/agentstation/rollcall/pkg/records"
)

// FieldMap names the merged-record fields read by the projector. Each entry
// lists candidates in priority order; the first non-empty one is used.
type FieldMap struct {
	Name             []string `yaml:"name" mapstructure:"name"`
	Constituency     []string `yaml:"constituency" mapstructure:"constituency"`
	State            []string `yaml:"state" mapstructure:"state"`
	Party            []string `yaml:"party" mapstructure:"party"`
	Position         []string `yaml:"position" mapstructure:"position"`
	Email            []string `yaml:"email" mapstructure:"email"`
	Twitter          []string `yaml:"twitter" mapstructure:"twitter"`
	Facebook         []string `yaml:"facebook" mapstructure:"facebook"`
	Instagram        []string `yaml:"instagram" mapstructure:"instagram"`
	LinkedIn         []string `yaml:"linkedin" mapstructure:"linkedin"`
	Assets           []string `yaml:"assets" mapstructure:"assets"`
	Liabilities      []string `yaml:"liabilities" mapstructure:"liabilities"`
	PresentAddress   []string `yaml:"present_address" mapstructure:"present_address"`
	PermanentAddress []string `yaml:"permanent_address" mapstructure:"permanent_address"`
	Education        []string `yaml:"education" mapstructure:"education"`
	OtherElections   []string `yaml:"other_elections" mapstructure:"other_elections"`
	Terms            []string `yaml:"terms" mapstructure:"terms"`
	PhotoFile        []string `yaml:"photo_file" mapstructure:"photo_file"`

	// Links are profile pages listed under "Profiles", by label.
	Links []Link `yaml:"links" mapstructure:"links"`
}

// Link names a field holding the URL of an external profile.
type Link struct {
	Label string `yaml:"label" mapstructure:"label"`
	Field string `yaml:"field" mapstructure:"field"`
}

// DefaultFieldMap matches records merged from MyNeta (primary) and Sansad.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		Name:             []string{"sansad_name", "myneta_candidate"},
		Constituency:     []string{"sansad_constituency_raw", "myneta_constituency_raw", "sansad_constituency", "myneta_constituency"},
		State:            []string{"sansad_state", "myneta_state"},
		Party:            []string{"sansad_party", "myneta_party"},
		Position:         []string{"sansad_position_detail", "sansad_position"},
		Email:            []string{"sansad_email"},
		Twitter:          []string{"sansad_twitter"},
		Facebook:         []string{"sansad_facebook"},
		Instagram:        []string{"sansad_instagram"},
		LinkedIn:         []string{"sansad_linkedin"},
		Assets:           []string{"myneta_total_assets"},
		Liabilities:      []string{"myneta_liabilities"},
		PresentAddress:   []string{"sansad_present_address"},
		PermanentAddress: []string{"sansad_permanent_address"},
		Education:        []string{"sansad_education", "myneta_education_detail", "myneta_education_summary"},
		OtherElections:   []string{"myneta_other_elections"},
		Terms:            []string{"sansad_loksabha_terms"},
		PhotoFile:        []string{"sansad_photo_file", "myneta_photo_file"},
		Links: []Link{
			{Label: "Sansad", Field: "sansad_profile_url"},
			{Label: "MyNeta", Field: "myneta_profile_url"},
		},
	}
}

// merge fills every empty entry of m from d.
func (m FieldMap) merge(d FieldMap) FieldMap {
	pick := func(a, b []string) []string {
		if len(a) > 0 {
			return a
		}
		return b
	}
	m.Name = pick(m.Name, d.Name)
	m.Constituency = pick(m.Constituency, d.Constituency)
	m.State = pick(m.State, d.State)
	m.Party = pick(m.Party, d.Party)
	m.Position = pick(m.Position, d.Position)
	m.Email = pick(m.Email, d.Email)
	m.Twitter = pick(m.Twitter, d.Twitter)
	m.Facebook = pick(m.Facebook, d.Facebook)
	m.Instagram = pick(m.Instagram, d.Instagram)
	m.LinkedIn = pick(m.LinkedIn, d.LinkedIn)
	m.Assets = pick(m.Assets, d.Assets)
	m.Liabilities = pick(m.Liabilities, d.Liabilities)
	m.PresentAddress = pick(m.PresentAddress, d.PresentAddress)
	m.PermanentAddress = pick(m.PermanentAddress, d.PermanentAddress)
	m.Education = pick(m.Education, d.Education)
	m.OtherElections = pick(m.OtherElections, d.OtherElections)
	m.Terms = pick(m.Terms, d.Terms)
	m.PhotoFile = pick(m.PhotoFile, d.PhotoFile)
	if len(m.Links) == 0 {
		m.Links = d.Links
	}
	return m
}

// get returns the first non-empty trimmed text among names.
func get(rec *records.Record, names []string) string {
	return rec.FirstText(names...)
}
