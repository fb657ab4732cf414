package xlsx

// Field keys of the workbook mapping. Numeric material fields use
// "<material>.<subcategory>" with the catalog keys of domain/waste.
const (
	FieldDate      = "date"
	FieldTotal     = "totalWaste"
	FieldDry       = "dryWaste"
	FieldWet       = "wetWaste"
	FieldTextiles  = "textiles"
	FieldRecycling = "recycling"
	FieldComposted = "composted"
	FieldRemarks   = "remarks"
)

type alias struct {
	field   string
	headers []string
}

// defaultAliases lists, per field, the header spellings seen in the
// collection workbooks. Order matters: earlier fields claim columns first.
var defaultAliases = []alias{
	{FieldDate, []string{"Date / Month", "Date", "Date/Month"}},
	{FieldTotal, []string{"Total Waste Collected (kg)", "Total Waste", "totalWaste", "Total Waste (kg)"}},
	{FieldDry, []string{"Dry Waste (kg)", "Dry Waste", "dryWaste"}},
	{FieldWet, []string{"Wet Waste (kg)", "Wet Waste", "wetWaste"}},

	{"plastic.bags", []string{"Bags/Sacks", "bags", "Bags"}},
	{"plastic.petBottles", []string{"Pet Bottles", "petBottles", "PET Bottles"}},
	{"plastic.hdpeBottles", []string{"HDPE Bottles", "hdpeBottles", "HDPE"}},
	{"plastic.polythene", []string{"Polythene", "polythene"}},
	{"plastic.others", []string{"Plastic Others"}},

	{"paper.thermocol", []string{"Paper Thermocol", "Thermocol"}},
	{"paper.newspaper", []string{"Newspaper", "newspaper"}},
	{"paper.cartoon", []string{"Carton", "Cartoon", "cartoon"}},
	{"paper.normalPaper", []string{"Normal Paper", "normalPaper"}},
	{"paper.cardboard", []string{"Cardboard", "cardboard"}},
	{"paper.others", []string{"Paper Others"}},

	{"glass.whiteGrades", []string{"White Grades", "Glass (kg)", "Glass", "White grades"}},
	{"glass.others", []string{"Glass Others"}},

	{"metal.aluminumCans", []string{"Aluminum cans", "Aluminum", "aluminumCans", "Aluminum Cans"}},
	{"metal.foodPackingContainer", []string{"Food Packing container", "Food Packing Container", "foodPackingContainer", "Food Container"}},
	{"metal.others", []string{"Metal Others"}},

	{"ewaste.batteries", []string{"Batteries", "batteries"}},
	{"ewaste.charger", []string{"Charger", "charger", "Chargers"}},
	{"ewaste.lighting", []string{"Lighting", "lighting"}},
	{"ewaste.others", []string{"E-waste Others", "Ewaste Others"}},

	{"others.expiredMedicines", []string{"Expired medicines", "Expired Medicines", "expiredMedicines"}},
	{"others.medicinesPackaging", []string{"Medicines packaging", "Medicines Packaging", "medicinesPackaging"}},
	{"others.thermometers", []string{"Thermometers", "thermometers"}},
	{"others.others", []string{"Others Others"}},

	{FieldTextiles, []string{"Textiles", "textiles"}},
	{FieldRecycling, []string{"Waste sent for Recycling (kg)", "Waste sent for Recycling", "Recycling (kg)", "Recycling", "Recycled (kg)", "Recycled"}},
	{FieldComposted, []string{"Waste Composted (kg)", "Waste Composted", "Composted (kg)", "Composted", "Compost"}},
	{FieldRemarks, []string{
		"Remarks / Observations", "Remarks/Observations", "Remarks/ Observations", "Remarks",
		"Observations", "Notes", "Comment", "Comments",
	}},
}

// subHeaderMarkers identify a first row that already holds the field
// headers. Without any of them the workbook uses a category row on top.
var subHeaderMarkers = []string{"Bags", "Pet Bottles", "Newspaper", "Batteries", "Aluminum", "Date"}
