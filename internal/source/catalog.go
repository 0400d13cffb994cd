package source

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ATS platform kinds for catalog entries.
const (
	ATSGreenhouse      = "greenhouse"
	ATSLever           = "lever"
	ATSWorkday         = "workday"
	ATSSmartRecruiters = "smartrecruiters"
)

// Company is one catalog entry for the ATS adapters. Slug is the board slug
// for Greenhouse/Lever/SmartRecruiters and the full career-site URL for
// Workday.
type Company struct {
	Name string `yaml:"name"`
	ATS  string `yaml:"ats"`
	Slug string `yaml:"slug"`
	Type string `yaml:"type"`
}

// CareerPage is one catalog entry for the generic HTML adapter.
type CareerPage struct {
	Name      string `yaml:"name"`
	CareerURL string `yaml:"career_url"`
	Type      string `yaml:"type"`
}

type catalogFile struct {
	ATS         []Company    `yaml:"ats"`
	CareerPages []CareerPage `yaml:"career_pages"`
}

// LoadCatalog reads a companies yaml file. An empty path returns the built-in
// fallback catalog.
func LoadCatalog(path string) ([]Company, []CareerPage, error) {
	if path == "" {
		return defaultATSCompanies(), defaultCareerPages(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading companies file %q: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parsing companies file %q: %w", path, err)
	}

	if len(file.ATS) == 0 && len(file.CareerPages) == 0 {
		return nil, nil, fmt.Errorf("companies file %q lists no companies", path)
	}

	return file.ATS, file.CareerPages, nil
}

func defaultATSCompanies() []Company {
	return []Company{
		{Name: "Genpact", ATS: ATSGreenhouse, Slug: "genpact", Type: "BPO"},
		{Name: "Capgemini India", ATS: ATSGreenhouse, Slug: "capgemini", Type: "MNC"},
		{Name: "Swiggy", ATS: ATSGreenhouse, Slug: "swiggy", Type: "Startup"},
		{Name: "Zomato", ATS: ATSGreenhouse, Slug: "zomato", Type: "Startup"},
		{Name: "PhonePe", ATS: ATSGreenhouse, Slug: "phonepe", Type: "Fintech"},
		{Name: "Razorpay", ATS: ATSGreenhouse, Slug: "razorpay", Type: "Fintech"},
		{Name: "Meesho", ATS: ATSGreenhouse, Slug: "meesho", Type: "Startup"},
		{Name: "Postman", ATS: ATSGreenhouse, Slug: "postman", Type: "Startup"},
		{Name: "Groww", ATS: ATSGreenhouse, Slug: "groww", Type: "Fintech"},
		{Name: "Zerodha", ATS: ATSGreenhouse, Slug: "zerodha", Type: "Fintech"},

		{Name: "Darwinbox", ATS: ATSLever, Slug: "darwinbox", Type: "Startup"},
		{Name: "Keka HR", ATS: ATSLever, Slug: "keka", Type: "Startup"},
		{Name: "Urban Company", ATS: ATSLever, Slug: "urbancompany", Type: "Startup"},
		{Name: "PubMatic", ATS: ATSLever, Slug: "pubmatic", Type: "MNC"},
		{Name: "MoEngage", ATS: ATSLever, Slug: "moengage", Type: "Startup"},
		{Name: "HealthifyMe", ATS: ATSLever, Slug: "healthifyme", Type: "Startup"},

		{Name: "Deloitte", ATS: ATSWorkday, Slug: "https://deloitte.wd1.myworkdayjobs.com/en-US/Deloitte_Careers", Type: "MNC"},
		{Name: "Accenture", ATS: ATSWorkday, Slug: "https://accenture.wd3.myworkdayjobs.com/AccentureIndiaCampus", Type: "MNC"},
		{Name: "JP Morgan", ATS: ATSWorkday, Slug: "https://jpmc.wd5.myworkdayjobs.com/en-US/External_Career_Site", Type: "MNC"},
		{Name: "Cognizant", ATS: ATSWorkday, Slug: "https://cognizant.wd1.myworkdayjobs.com/en-US/Cognizant_Careers", Type: "MNC"},
		{Name: "Wipro", ATS: ATSWorkday, Slug: "https://wipro.wd3.myworkdayjobs.com/Wipro_Careers", Type: "MNC"},
		{Name: "EY", ATS: ATSWorkday, Slug: "https://ey.wd5.myworkdayjobs.com/EY_External_Careers", Type: "MNC"},

		{Name: "Concentrix", ATS: ATSSmartRecruiters, Slug: "Concentrix", Type: "BPO"},
		{Name: "Teleperformance", ATS: ATSSmartRecruiters, Slug: "Teleperformance", Type: "BPO"},
		{Name: "Mphasis", ATS: ATSSmartRecruiters, Slug: "Mphasis", Type: "MNC"},
	}
}

func defaultCareerPages() []CareerPage {
	return []CareerPage{
		{Name: "TCS", CareerURL: "https://www.tcs.com/careers", Type: "MNC"},
		{Name: "Infosys", CareerURL: "https://www.infosys.com/careers/", Type: "MNC"},
		{Name: "Microsoft", CareerURL: "https://careers.microsoft.com", Type: "MNC"},
		{Name: "Amazon", CareerURL: "https://www.amazon.jobs/", Type: "MNC"},
		{Name: "Google", CareerURL: "https://careers.google.com/jobs/", Type: "MNC"},
		{Name: "PhonePe", CareerURL: "https://www.phonepe.com/careers/", Type: "Startup"},
		{Name: "Flipkart", CareerURL: "https://www.flipkartcareers.com/", Type: "Startup"},
	}
}
