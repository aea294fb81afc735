// Package jobs defines the job-listing domain model shared by every search
// backend and transport.
//
// Categorical attributes are fixed enumerations that mirror the Postgres
// enum types created by the migrations. Values are lower-case and
// hyphenated; parsing is exact (case-sensitive, no trimming) so that a value
// accepted here is always accepted by the database.
package jobs

import "fmt"

// ExperienceLevel values mirror the experience_level enum in PostgreSQL.
type ExperienceLevel string

const (
	ExperienceEntryLevel ExperienceLevel = "entry-level"
	ExperienceJunior     ExperienceLevel = "junior"
	ExperienceMidLevel   ExperienceLevel = "mid-level"
	ExperienceSenior     ExperienceLevel = "senior"
	ExperienceLead       ExperienceLevel = "lead"
	ExperiencePrincipal  ExperienceLevel = "principal"
	ExperienceExecutive  ExperienceLevel = "executive"
)

// EmploymentType values mirror the employment_type enum in PostgreSQL.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full-time"
	EmploymentPartTime   EmploymentType = "part-time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentFreelance  EmploymentType = "freelance"
	EmploymentTemporary  EmploymentType = "temporary"
	EmploymentInternship EmploymentType = "internship"
)

// Location values mirror the location_type enum in PostgreSQL.
type Location string

const (
	LocationCostaRica Location = "costa-rica"
	LocationLatam     Location = "latam"
)

// Province values mirror the province enum in PostgreSQL.
type Province string

const (
	ProvinceSanJose    Province = "san-jose"
	ProvinceAlajuela   Province = "alajuela"
	ProvinceCartago    Province = "cartago"
	ProvinceHeredia    Province = "heredia"
	ProvinceGuanacaste Province = "guanacaste"
	ProvincePuntarenas Province = "puntarenas"
	ProvinceLimon      Province = "limon"
)

// WorkMode values mirror the work_mode enum in PostgreSQL.
type WorkMode string

const (
	WorkModeRemote WorkMode = "remote"
	WorkModeHybrid WorkMode = "hybrid"
	WorkModeOnsite WorkMode = "onsite"
)

// JobFunction values mirror the job_function enum in PostgreSQL.
type JobFunction string

const (
	FunctionTechnologyEngineering    JobFunction = "technology-engineering"
	FunctionSalesBusinessDevelopment JobFunction = "sales-business-development"
	FunctionMarketingCommunications  JobFunction = "marketing-communications"
	FunctionOperationsLogistics      JobFunction = "operations-logistics"
	FunctionFinanceAccounting        JobFunction = "finance-accounting"
	FunctionManagementLeadership     JobFunction = "management-leadership"
	FunctionHRRecruitment            JobFunction = "hr-recruitment"
	FunctionCustomerSuccessSupport   JobFunction = "customer-success-support"
	FunctionProductManagement        JobFunction = "product-management"
	FunctionDataAnalytics            JobFunction = "data-analytics"
	FunctionDesignCreative           JobFunction = "design-creative"
	FunctionLegalCompliance          JobFunction = "legal-compliance"
	FunctionOther                    JobFunction = "other"
)

// Language selects both the language a job is written in and the Postgres
// text-search configuration used to tokenize it. The two must agree.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageSpanish Language = "spanish"
)

// DefaultLanguage is used when a search does not name one.
const DefaultLanguage = LanguageEnglish

var (
	experienceLevels = []ExperienceLevel{
		ExperienceEntryLevel, ExperienceJunior, ExperienceMidLevel, ExperienceSenior,
		ExperienceLead, ExperiencePrincipal, ExperienceExecutive,
	}
	employmentTypes = []EmploymentType{
		EmploymentFullTime, EmploymentPartTime, EmploymentContract,
		EmploymentFreelance, EmploymentTemporary, EmploymentInternship,
	}
	locations = []Location{LocationCostaRica, LocationLatam}
	provinces = []Province{
		ProvinceSanJose, ProvinceAlajuela, ProvinceCartago, ProvinceHeredia,
		ProvinceGuanacaste, ProvincePuntarenas, ProvinceLimon,
	}
	workModes    = []WorkMode{WorkModeRemote, WorkModeHybrid, WorkModeOnsite}
	jobFunctions = []JobFunction{
		FunctionTechnologyEngineering, FunctionSalesBusinessDevelopment,
		FunctionMarketingCommunications, FunctionOperationsLogistics,
		FunctionFinanceAccounting, FunctionManagementLeadership,
		FunctionHRRecruitment, FunctionCustomerSuccessSupport,
		FunctionProductManagement, FunctionDataAnalytics,
		FunctionDesignCreative, FunctionLegalCompliance, FunctionOther,
	}
	languages = []Language{LanguageEnglish, LanguageSpanish}
)

// parseEnum returns the member of valid equal to s, or an error naming kind.
func parseEnum[T ~string](kind, s string, valid []T) (T, error) {
	for _, v := range valid {
		if string(v) == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

// ParseExperienceLevel converts a raw string to an ExperienceLevel.
func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	return parseEnum("experience level", s, experienceLevels)
}

// ParseEmploymentType converts a raw string to an EmploymentType.
func ParseEmploymentType(s string) (EmploymentType, error) {
	return parseEnum("employment type", s, employmentTypes)
}

// ParseLocation converts a raw string to a Location.
func ParseLocation(s string) (Location, error) {
	return parseEnum("location", s, locations)
}

// ParseProvince converts a raw string to a Province.
func ParseProvince(s string) (Province, error) {
	return parseEnum("province", s, provinces)
}

// ParseWorkMode converts a raw string to a WorkMode.
func ParseWorkMode(s string) (WorkMode, error) {
	return parseEnum("work mode", s, workModes)
}

// ParseJobFunction converts a raw string to a JobFunction.
func ParseJobFunction(s string) (JobFunction, error) {
	return parseEnum("job function", s, jobFunctions)
}

// ParseLanguage converts a raw string to a Language.
func ParseLanguage(s string) (Language, error) {
	return parseEnum("language", s, languages)
}

// Options lists every enumeration value, keyed by the filter name used on
// the wire. Slices are copies; callers may modify them.
type Options struct {
	ExperienceLevels []ExperienceLevel `json:"experienceLevels"`
	EmploymentTypes  []EmploymentType  `json:"employmentTypes"`
	Locations        []Location        `json:"locations"`
	Provinces        []Province        `json:"provinces"`
	WorkModes        []WorkMode        `json:"workModes"`
	JobFunctions     []JobFunction     `json:"jobFunctions"`
	Languages        []Language        `json:"languages"`
}

// AllOptions returns the fixed enumerations.
func AllOptions() Options {
	return Options{
		ExperienceLevels: append([]ExperienceLevel(nil), experienceLevels...),
		EmploymentTypes:  append([]EmploymentType(nil), employmentTypes...),
		Locations:        append([]Location(nil), locations...),
		Provinces:        append([]Province(nil), provinces...),
		WorkModes:        append([]WorkMode(nil), workModes...),
		JobFunctions:     append([]JobFunction(nil), jobFunctions...),
		Languages:        append([]Language(nil), languages...),
	}
}
