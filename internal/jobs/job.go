package jobs

import "time"

// Company mirrors the companies table. Jobs reference exactly one company.
type Company struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Job mirrors a row of the jobs table without its search vector, which is
// maintained by the database and never read by the service.
type Job struct {
	ID               int64           `json:"id" yaml:"id"`
	CompanyID        int64           `json:"companyId" yaml:"company_id"`
	Title            string          `json:"title" yaml:"title"`
	Description      string          `json:"description" yaml:"description"`
	Responsibilities []string        `json:"responsibilities" yaml:"responsibilities"`
	SkillMustHave    []string        `json:"skillMustHave" yaml:"skill_must_have"`
	SkillNiceToHave  []string        `json:"skillNiceToHave" yaml:"skill_nice_to_have"`
	MainTechnologies []string        `json:"mainTechnologies" yaml:"main_technologies"`
	Benefits         []string        `json:"benefits" yaml:"benefits"`
	ExperienceLevel  ExperienceLevel `json:"experienceLevel" yaml:"experience_level"`
	EmploymentType   EmploymentType  `json:"employmentType" yaml:"employment_type"`
	Location         Location        `json:"location" yaml:"location"`
	Province         Province        `json:"province" yaml:"province"`
	WorkMode         WorkMode        `json:"workMode" yaml:"work_mode"`
	JobFunction      JobFunction     `json:"jobFunction" yaml:"job_function"`
	Language         Language        `json:"language" yaml:"language"`
	City             string          `json:"city" yaml:"city"`
	ApplicationURL   string          `json:"applicationUrl" yaml:"application_url"`
	IsActive         bool            `json:"isActive" yaml:"is_active"`
	CreatedAt        time.Time       `json:"createdAt" yaml:"created_at"`
	UpdatedAt        time.Time       `json:"updatedAt" yaml:"updated_at"`
}

// SearchableText returns the text the search vector is built from, in
// weight order: title, description, then the list fields.
func (j *Job) SearchableText() []string {
	parts := []string{j.Title, j.Description}
	parts = append(parts, j.Responsibilities...)
	parts = append(parts, j.SkillMustHave...)
	parts = append(parts, j.SkillNiceToHave...)
	parts = append(parts, j.MainTechnologies...)
	return parts
}

// Validate reports the first enumerated attribute that holds an unknown
// value. Fixtures go through it before being indexed.
func (j *Job) Validate() error {
	if _, err := ParseExperienceLevel(string(j.ExperienceLevel)); err != nil {
		return err
	}
	if _, err := ParseEmploymentType(string(j.EmploymentType)); err != nil {
		return err
	}
	if _, err := ParseLocation(string(j.Location)); err != nil {
		return err
	}
	if j.Province != "" {
		if _, err := ParseProvince(string(j.Province)); err != nil {
			return err
		}
	}
	if _, err := ParseWorkMode(string(j.WorkMode)); err != nil {
		return err
	}
	if _, err := ParseJobFunction(string(j.JobFunction)); err != nil {
		return err
	}
	if _, err := ParseLanguage(string(j.Language)); err != nil {
		return err
	}
	return nil
}
