package taxonomy

import "github.com/ManuGH/fieldpulse/internal/domain/model"

// DefaultCode is assigned when an agent turns dormant without a classifier signal.
const DefaultCode = model.CodeUnclassified

// Order is significant: listings and analytics exports follow it.
var categories = []categoryEntry{
	{model.CategoryCompensation, Labels{EN: "Compensation", HI: "पारिश्रमिक"}},
	{model.CategoryTrainingGap, Labels{EN: "Training gap", HI: "प्रशिक्षण की कमी"}},
	{model.CategoryProductConfusion, Labels{EN: "Product confusion", HI: "उत्पाद को लेकर भ्रम"}},
	{model.CategoryPersonal, Labels{EN: "Personal", HI: "व्यक्तिगत कारण"}},
	{model.CategoryCompetitivePoaching, Labels{EN: "Competitive poaching", HI: "प्रतिस्पर्धी द्वारा आकर्षण"}},
	{model.CategoryAdministrative, Labels{EN: "Administrative", HI: "प्रशासनिक"}},
	{model.CategoryUnknown, Labels{EN: "Unknown", HI: "अज्ञात"}},
}

var reasons = []Reason{
	{model.CodeLowCommission, model.CategoryCompensation, Labels{EN: "Commission too low", HI: "कमीशन बहुत कम"}},
	{model.CodeDelayedPayout, model.CategoryCompensation, Labels{EN: "Delayed commission payout", HI: "कमीशन भुगतान में देरी"}},
	{model.CodeClawbackDispute, model.CategoryCompensation, Labels{EN: "Commission clawback dispute", HI: "कमीशन वापसी विवाद"}},
	{model.CodeIncentiveMissed, model.CategoryCompensation, Labels{EN: "Missed incentive target", HI: "प्रोत्साहन लक्ष्य से चूक"}},
	{model.CodeExpensesUncovered, model.CategoryCompensation, Labels{EN: "Field expenses not covered", HI: "फील्ड खर्च की भरपाई नहीं"}},

	{model.CodeNoOnboarding, model.CategoryTrainingGap, Labels{EN: "Onboarding never completed", HI: "ऑनबोर्डिंग पूरी नहीं हुई"}},
	{model.CodeSalesSkills, model.CategoryTrainingGap, Labels{EN: "Lacks sales skills", HI: "बिक्री कौशल की कमी"}},
	{model.CodeDigitalTools, model.CategoryTrainingGap, Labels{EN: "Struggles with digital tools", HI: "डिजिटल टूल्स में कठिनाई"}},
	{model.CodeCertificationDue, model.CategoryTrainingGap, Labels{EN: "Certification pending", HI: "प्रमाणन लंबित"}},

	{model.CodeFeaturesUnclear, model.CategoryProductConfusion, Labels{EN: "Product features unclear", HI: "उत्पाद की विशेषताएँ अस्पष्ट"}},
	{model.CodePremiumCalculation, model.CategoryProductConfusion, Labels{EN: "Premium calculation confusion", HI: "प्रीमियम गणना में भ्रम"}},
	{model.CodeUnderwritingReject, model.CategoryProductConfusion, Labels{EN: "Repeated underwriting rejections", HI: "बार-बार अंडरराइटिंग अस्वीकृति"}},
	{model.CodePortfolioChange, model.CategoryProductConfusion, Labels{EN: "Product portfolio changed", HI: "उत्पाद पोर्टफोलियो में बदलाव"}},

	{model.CodeHealth, model.CategoryPersonal, Labels{EN: "Health issues", HI: "स्वास्थ्य समस्याएँ"}},
	{model.CodeFamily, model.CategoryPersonal, Labels{EN: "Family commitments", HI: "पारिवारिक जिम्मेदारियाँ"}},
	{model.CodeRelocation, model.CategoryPersonal, Labels{EN: "Relocated", HI: "स्थान परिवर्तन"}},
	{model.CodeOtherEmployment, model.CategoryPersonal, Labels{EN: "Took other employment", HI: "अन्य नौकरी कर ली"}},
	{model.CodeStudies, model.CategoryPersonal, Labels{EN: "Pursuing studies", HI: "पढ़ाई जारी"}},

	{model.CodeHigherCommission, model.CategoryCompetitivePoaching, Labels{EN: "Offered higher commission elsewhere", HI: "अन्यत्र अधिक कमीशन का प्रस्ताव"}},
	{model.CodeJoinedCompetitor, model.CategoryCompetitivePoaching, Labels{EN: "Joined a competitor", HI: "प्रतिस्पर्धी से जुड़ गए"}},
	{model.CodeBetterSupport, model.CategoryCompetitivePoaching, Labels{EN: "Better support at a competitor", HI: "प्रतिस्पर्धी के यहाँ बेहतर सहायता"}},

	{model.CodeLicenseExpired, model.CategoryAdministrative, Labels{EN: "Licence expired", HI: "लाइसेंस की अवधि समाप्त"}},
	{model.CodeKYCPending, model.CategoryAdministrative, Labels{EN: "KYC pending", HI: "केवाईसी लंबित"}},
	{model.CodeSystemAccess, model.CategoryAdministrative, Labels{EN: "No system access", HI: "सिस्टम तक पहुँच नहीं"}},
	{model.CodeCoordinatorSilent, model.CategoryAdministrative, Labels{EN: "Coordinator unresponsive", HI: "समन्वयक से संपर्क नहीं"}},

	{model.CodeUnclassified, model.CategoryUnknown, Labels{EN: "Not yet classified", HI: "अभी वर्गीकृत नहीं"}},
	{model.CodeNoResponse, model.CategoryUnknown, Labels{EN: "Agent not responding", HI: "एजेंट जवाब नहीं दे रहे"}},
}
