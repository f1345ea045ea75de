// Package attackconfig holds the settings shared by the injection detectors.
// Detector configs embed Base and call Validate in their constructors.
package attackconfig
