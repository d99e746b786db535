// Package ios reads an iOS app-list export and answers the same questions
// the android package answers for Android dumps: which apps are installed,
// which are system apps, and what each app is entitled to do.
//
// The export is one JSON object with an "apps" table (bundle id to raw
// app metadata, straight from the device's property lists) and a "devinfo"
// block describing the hardware. Unlike Android there is no usage audit
// log to mine; permissions come from each bundle's TCC entitlement arrays,
// and usage questions are answered with on-device instructions instead of
// numbers.
//
// Permission keys are resolved through a self-extending catalog
// (catalog.Store): any TCC key seen for the first time is recorded with a
// derived label, so the catalog grows as new iOS versions introduce new
// services.
package ios
