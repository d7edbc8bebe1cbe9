package catalog

type ContactEntry struct {
	Title string
	Value string
	Icon  string
}

var ContactInfo = []ContactEntry{
	{Title: "Email", Value: "hello@pixweb.com", Icon: "abstract"},
	{Title: "Phone", Value: "+1 (555) 123-4567", Icon: "city"},
	{Title: "Address", Value: "123 Photography Lane, Creative City, CC 12345", Icon: "street"},
}

type Subject struct {
	Value string
	Label string
}

var ContactSubjects = []Subject{
	{Value: "general", Label: "General Inquiry"},
	{Value: "support", Label: "Technical Support"},
	{Value: "feedback", Label: "Feedback"},
	{Value: "partnership", Label: "Partnership"},
	{Value: "other", Label: "Other"},
}

type TeamMember struct {
	Name        string
	Role        string
	Description string
	Placeholder string
}

var Team = []TeamMember{
	{Name: "John Doe", Role: "Founder & CEO", Description: "Passionate photographer with 10+ years of experience in digital photography.", Placeholder: "landscape"},
	{Name: "Jane Smith", Role: "Lead Developer", Description: "Full-stack developer specializing in modern web technologies and user experience.", Placeholder: "city"},
	{Name: "Mike Johnson", Role: "Community Manager", Description: "Connecting photographers worldwide and building an amazing creative community.", Placeholder: "portrait"},
}
