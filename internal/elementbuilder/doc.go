// Package elementbuilder turns element XML nodes and file locators into
// manifest elements, and renders elements back to XML nodes.
//
// Builder implements manifestxml.ElementBuilder. Local files are read through
// a vfs.FileSystem so callers and tests can substitute an in-memory tree;
// building from a locator detects the mimetype, records the size, and
// computes a checksum with the configured algorithm. Serializer implements
// manifestxml.ElementSerializer.
//
// Element markup:
//
//	<track id="track-1" type="presenter/source" ref="catalog:catalog-1">
//	  <description>...</description>
//	  <tags><tag>archive</tag></tags>
//	  <url>presenter.mp4</url>
//	  <mimetype>video/mp4</mimetype>
//	  <checksum type="md5">...</checksum>
//	  <size>1024</size>
//	  <duration>60000</duration>
//	</track>
//
// Catalogs, attachments, and unclassified elements use catalog, attachment,
// and element with the same children minus duration. File locators below the
// render base directory are written relative to it and resolved against the
// builder base directory when read.
package elementbuilder
