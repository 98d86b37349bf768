package core

// Sample is a small built-in dataset for trying the tool without a file.
type Sample struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	CSV  string `json:"csv"`
}

// DefaultSample is loaded when no sample key is given.
const DefaultSample = "pima"

// samples is in picker order; the default comes first.
var samples = []Sample{
	{
		Key:  "pima",
		Name: "Pima Diabetes",
		CSV: `Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Outcome
6,148,72,35,0,33.6,0.627,50,1
1,85,66,29,0,26.6,0.351,31,0
8,183,64,0,0,23.3,0.672,32,1
1,89,66,23,94,28.1,0.167,21,0
0,137,40,35,168,43.1,2.288,33,1`,
	},
	{
		Key:  "iris",
		Name: "Iris",
		CSV: `sepal_length,sepal_width,petal_length,petal_width,species
5.1,3.5,1.4,0.2,setosa
4.9,3.0,1.4,0.2,setosa
6.3,3.3,6.0,2.5,virginica
5.8,2.7,5.1,1.9,virginica
5.7,2.8,4.1,1.3,versicolor`,
	},
	{
		Key:  "titanic",
		Name: "Titanic (subset)",
		CSV: `Pclass,Sex,Age,SibSp,Parch,Fare,Embarked,Survived
3,male,22,1,0,7.25,S,0
1,female,38,1,0,71.2833,C,1
3,female,26,0,0,7.925,S,1
1,female,35,1,0,53.1,S,1
3,male,35,0,0,8.05,S,0`,
	},
}

// LookupSample returns the sample registered under key. Unknown keys fall
// back to DefaultSample; ok reports whether key itself matched.
func LookupSample(key string) (s Sample, ok bool) {
	for _, s := range samples {
		if s.Key == key {
			return s, true
		}
	}
	for _, s := range samples {
		if s.Key == DefaultSample {
			return s, false
		}
	}
	return Sample{}, false
}

// Samples lists the built-in samples in picker order, default first.
func Samples() []Sample {
	return append([]Sample(nil), samples...)
}
